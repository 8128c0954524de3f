// Package debounce coalesces rapid repeated submissions from one logical
// input stream into a single delayed delivery of the latest text.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer keeps one cancellable window per input stream. Windows for
// different input IDs are fully independent.
type Debouncer struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	windows map[string]*window
}

type window struct {
	timer       clockwork.Timer
	latestText  string
	scheduledAt time.Time
	generation  uint64
}

// New builds a debouncer on the given clock. Tests inject a fake clock so
// coalescing is deterministic without wall-clock waits.
func New(clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{
		clock:   clock,
		windows: make(map[string]*window),
	}
}

// Schedule arms (or re-arms) the window for inputID. Any previously pending
// delivery for the same inputID is superseded: its timer is stopped and only
// the text from the last Schedule call before expiry reaches onFire. onFire
// runs on the timer goroutine.
func (d *Debouncer) Schedule(inputID, text string, delay time.Duration, onFire func(text string)) {
	if onFire == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	win, exists := d.windows[inputID]
	if exists {
		win.timer.Stop()
	} else {
		win = &window{}
		d.windows[inputID] = win
	}

	win.latestText = text
	win.scheduledAt = d.clock.Now()
	win.generation++

	armed := win.generation
	win.timer = d.clock.AfterFunc(delay, func() {
		d.fire(inputID, armed, onFire)
	})
}

func (d *Debouncer) fire(inputID string, generation uint64, onFire func(text string)) {
	d.mu.Lock()
	win, ok := d.windows[inputID]
	if !ok || win.generation != generation {
		// Superseded or cancelled between expiry and delivery.
		d.mu.Unlock()
		return
	}
	text := win.latestText
	delete(d.windows, inputID)
	d.mu.Unlock()

	onFire(text)
}

// Cancel stops a pending window without firing it. It reports whether a
// window was actually pending.
func (d *Debouncer) Cancel(inputID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	win, ok := d.windows[inputID]
	if !ok {
		return false
	}
	win.timer.Stop()
	win.generation++
	delete(d.windows, inputID)
	return true
}

// CancelAll stops every pending window. Used on session teardown.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, win := range d.windows {
		win.timer.Stop()
		win.generation++
		delete(d.windows, id)
	}
}

// Len returns the number of armed windows.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.windows)
}
