package debounce

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectFired(t *testing.T, fired <-chan string) []string {
	t.Helper()

	var got []string
	for {
		select {
		case text := <-fired:
			got = append(got, text)
		case <-time.After(100 * time.Millisecond):
			return got
		}
	}
}

func TestScheduleCoalescesToLatestText(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := New(clock)
	fired := make(chan string, 4)
	onFire := func(text string) { fired <- text }

	d.Schedule("field-1", "H", 500*time.Millisecond, onFire)
	clock.Advance(100 * time.Millisecond)
	d.Schedule("field-1", "He", 500*time.Millisecond, onFire)
	clock.Advance(100 * time.Millisecond)
	d.Schedule("field-1", "Hello", 500*time.Millisecond, onFire)

	assert.Equal(t, 1, d.Len())

	clock.Advance(500 * time.Millisecond)

	got := collectFired(t, fired)
	require.Equal(t, []string{"Hello"}, got, "only the last scheduled text may fire")
	assert.Equal(t, 0, d.Len())
}

func TestCancelSuppressesDelivery(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := New(clock)
	fired := make(chan string, 1)

	d.Schedule("field-1", "draft", 200*time.Millisecond, func(text string) { fired <- text })
	require.True(t, d.Cancel("field-1"))
	assert.False(t, d.Cancel("field-1"), "second cancel must be a no-op")

	clock.Advance(time.Second)

	assert.Empty(t, collectFired(t, fired))
	assert.Equal(t, 0, d.Len())
}

func TestWindowsAreIndependent(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := New(clock)
	fired := make(chan string, 4)
	onFire := func(text string) { fired <- text }

	d.Schedule("field-a", "alpha", 300*time.Millisecond, onFire)
	d.Schedule("field-b", "beta", 600*time.Millisecond, onFire)
	require.Equal(t, 2, d.Len())

	clock.Advance(300 * time.Millisecond)
	got := collectFired(t, fired)
	require.Equal(t, []string{"alpha"}, got, "firing one window must not fire another")
	assert.Equal(t, 1, d.Len())

	clock.Advance(300 * time.Millisecond)
	got = collectFired(t, fired)
	assert.Equal(t, []string{"beta"}, got)
}

func TestCancelAll(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := New(clock)
	fired := make(chan string, 4)
	onFire := func(text string) { fired <- text }

	d.Schedule("a", "one", 100*time.Millisecond, onFire)
	d.Schedule("b", "two", 100*time.Millisecond, onFire)
	d.CancelAll()

	clock.Advance(time.Second)

	assert.Empty(t, collectFired(t, fired))
	assert.Equal(t, 0, d.Len())
}

func TestRescheduleAfterFire(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := New(clock)
	fired := make(chan string, 4)
	onFire := func(text string) { fired <- text }

	d.Schedule("field", "first", 100*time.Millisecond, onFire)
	clock.Advance(100 * time.Millisecond)
	require.Equal(t, []string{"first"}, collectFired(t, fired))

	d.Schedule("field", "second", 100*time.Millisecond, onFire)
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"second"}, collectFired(t, fired))
}
