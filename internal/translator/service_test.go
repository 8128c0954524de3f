package translator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innkeep/localize/internal/detect"
	"github.com/innkeep/localize/internal/translation"
)

// countingProvider records every call and can be made to block or fail.
type countingProvider struct {
	calls   atomic.Int32
	mu      sync.Mutex
	texts   []string
	failErr error
	block   chan struct{}
}

func (p *countingProvider) Name() string                 { return "counting" }
func (p *countingProvider) SupportedLanguages() []string { return []string{"en", "es", "fr"} }

func (p *countingProvider) Translate(ctx context.Context, req translation.Request) (*translation.Response, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.texts = append(p.texts, req.Text)
	p.mu.Unlock()

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.failErr != nil {
		return nil, p.failErr
	}
	return &translation.Response{
		Text:         "[" + req.TargetLang + "] " + req.Text,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		ProviderName: p.Name(),
	}, nil
}

func (p *countingProvider) translatedTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

func newTestService(t *testing.T, provider translation.Provider, opts Options) *Service {
	t.Helper()

	svc, err := New(provider, detect.New(detect.StaticSource{}), opts, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestTranslateSecondCallIsCacheHit(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{})

	first := svc.Translate(context.Background(), "Hello", "ES", "en")
	assert.Equal(t, "[es] Hello", first.Text)
	assert.False(t, first.Cached)

	second := svc.Translate(context.Background(), "Hello", "ES", "en")
	assert.Equal(t, "[es] Hello", second.Text)
	assert.True(t, second.Cached)

	assert.Equal(t, int32(1), provider.calls.Load(), "second call must be served from cache")

	stats := svc.Stats()
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
	assert.InDelta(t, 0.5, stats.CacheHitRate, 1e-9)
}

func TestTranslateSingleflight(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{block: make(chan struct{})}
	svc := newTestService(t, provider, Options{Workers: 4})

	const callers = 4
	results := make(chan Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Translate(context.Background(), "Hello", "es", "en")
		}()
	}

	require.Eventually(t, func() bool {
		return svc.Stats().PendingTranslations == 1 && provider.calls.Load() == 1
	}, time.Second, time.Millisecond, "concurrent callers must share one in-flight call")

	close(provider.block)
	wg.Wait()
	close(results)

	assert.Equal(t, int32(1), provider.calls.Load())
	for result := range results {
		assert.Equal(t, "[es] Hello", result.Text)
	}
}

func TestTranslateSameLanguageIsNoOp(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{})

	got := svc.Translate(context.Background(), "Bonjour", "FR", "FR")
	assert.Equal(t, "Bonjour", got.Text)
	assert.False(t, got.Degraded)
	assert.Zero(t, provider.calls.Load())

	// Neither a hit nor a miss is recorded.
	stats := svc.Stats()
	assert.Zero(t, stats.CacheHits)
	assert.Zero(t, stats.CacheMisses)
}

func TestTranslateEmptyInput(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{})

	got := svc.Translate(context.Background(), "", "ES", "")
	assert.Equal(t, "", got.Text)
	assert.Zero(t, provider.calls.Load())

	got = svc.Translate(context.Background(), "   ", "ES", "")
	assert.Equal(t, "   ", got.Text)
	assert.Zero(t, provider.calls.Load())

	stats := svc.Stats()
	assert.Zero(t, stats.CacheHits)
	assert.Zero(t, stats.CacheMisses)
}

func TestTranslateInvalidTargetLangPassesThrough(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{})

	got := svc.Translate(context.Background(), "Hello", "12!", "en")
	assert.Equal(t, "Hello", got.Text)
	assert.Zero(t, provider.calls.Load())
}

func TestTranslateProviderFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{failErr: errors.New("quota exceeded")}
	svc := newTestService(t, provider, Options{})

	got := svc.Translate(context.Background(), "Hello", "es", "en")
	assert.Equal(t, "Hello", got.Text, "failures must fall back to the original text")
	assert.True(t, got.Degraded)
	assert.Equal(t, uint64(1), svc.Stats().ProviderErrors)

	// The failure is not cached, so the next call retries the provider.
	provider.failErr = nil
	got = svc.Translate(context.Background(), "Hello", "es", "en")
	assert.Equal(t, "[es] Hello", got.Text)
	assert.False(t, got.Degraded)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestTranslateNormalizesWhitespaceForCacheKey(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{})

	_ = svc.Translate(context.Background(), "Hello   world", "es", "en")
	got := svc.Translate(context.Background(), "  Hello world ", "es", "en")

	assert.True(t, got.Cached, "whitespace variants must share one cache entry")
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestTranslateDebouncedCoalesces(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{Clock: clock, DebounceInterval: 500 * time.Millisecond})

	ctx := context.Background()
	first := svc.TranslateDebounced(ctx, "f1", "H", "es", "en")
	clock.Advance(100 * time.Millisecond)
	second := svc.TranslateDebounced(ctx, "f1", "He", "es", "en")
	clock.Advance(100 * time.Millisecond)
	third := svc.TranslateDebounced(ctx, "f1", "Hello", "es", "en")

	assert.Equal(t, 1, svc.Stats().DebounceWindows)

	clock.Advance(500 * time.Millisecond)

	for _, ch := range []<-chan Result{first, second, third} {
		select {
		case result, ok := <-ch:
			require.True(t, ok, "superseded callers must still receive the final result")
			assert.Equal(t, "[es] Hello", result.Text)
		case <-time.After(time.Second):
			t.Fatal("debounced result did not arrive")
		}
	}

	assert.Equal(t, int32(1), provider.calls.Load(), "only the final text may reach the provider")
	assert.Equal(t, []string{"Hello"}, provider.translatedTexts())
	assert.Equal(t, 0, svc.Stats().DebounceWindows)
}

func TestTranslateDebouncedInFlightResultDoesNotReachNewerCall(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	provider := &countingProvider{block: make(chan struct{})}
	svc := newTestService(t, provider, Options{Clock: clock, DebounceInterval: 200 * time.Millisecond})

	ctx := context.Background()
	first := svc.TranslateDebounced(ctx, "f1", "first", "es", "en")

	// Fire the first window and leave its provider call hanging in flight.
	clock.Advance(200 * time.Millisecond)
	require.Eventually(t, func() bool {
		return provider.calls.Load() == 1
	}, time.Second, time.Millisecond)

	// The user resumes typing while the first translation is in flight.
	second := svc.TranslateDebounced(ctx, "f1", "second", "es", "en")

	// The stale translation completes now; it must not settle either caller.
	provider.block <- struct{}{}

	clock.Advance(200 * time.Millisecond)
	require.Eventually(t, func() bool {
		return provider.calls.Load() == 2
	}, time.Second, time.Millisecond)
	provider.block <- struct{}{}

	for _, ch := range []<-chan Result{first, second} {
		select {
		case result, ok := <-ch:
			require.True(t, ok)
			assert.Equal(t, "[es] second", result.Text, "callers must settle with the latest text only")
		case <-time.After(time.Second):
			t.Fatal("debounced result did not arrive")
		}
	}
	assert.Equal(t, []string{"first", "second"}, provider.translatedTexts())
}

func TestTranslateDebouncedEmptyTextShortCircuits(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{Clock: clock, DebounceInterval: 500 * time.Millisecond})

	ctx := context.Background()
	pending := svc.TranslateDebounced(ctx, "f1", "Hello", "es", "en")
	cleared := svc.TranslateDebounced(ctx, "f1", "   ", "es", "en")

	// Clearing the field supersedes the pending text: both callers resolve
	// with the empty pass-through and no timer remains armed.
	for _, ch := range []<-chan Result{pending, cleared} {
		select {
		case result, ok := <-ch:
			require.True(t, ok)
			assert.Equal(t, "", strings.TrimSpace(result.Text))
		case <-time.After(time.Second):
			t.Fatal("short-circuit result did not arrive")
		}
	}

	clock.Advance(time.Second)
	assert.Zero(t, provider.calls.Load())
	assert.Equal(t, 0, svc.Stats().DebounceWindows)
}

func TestCancelDebounce(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{Clock: clock, DebounceInterval: 200 * time.Millisecond})

	ch := svc.TranslateDebounced(context.Background(), "widget-7", "Hello", "es", "en")
	svc.CancelDebounce("widget-7")

	clock.Advance(time.Second)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "cancelled windows must close channels without a result")
	case <-time.After(time.Second):
		t.Fatal("cancelled channel was not closed")
	}
	assert.Zero(t, provider.calls.Load())
}

func TestPreloadWarmsCache(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{DefaultSourceLang: "en"})

	svc.Preload(context.Background(), []string{"Check-in", "Check-out"}, []string{"es", "fr", "en"})

	// "en" targets are skipped: they match the default source language.
	require.Eventually(t, func() bool {
		return svc.Stats().CacheSize == 4
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(4), provider.calls.Load())

	got := svc.Translate(context.Background(), "Check-in", "es", "en")
	assert.True(t, got.Cached)
	assert.Equal(t, int32(4), provider.calls.Load())

	// A second preload dedupes against the warmed cache.
	svc.Preload(context.Background(), []string{"Check-in"}, []string{"es"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(4), provider.calls.Load())
}

func TestPreloadCollapsesWhitespaceVariants(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	svc := newTestService(t, provider, Options{DefaultSourceLang: "en"})

	scheduled := svc.Preload(context.Background(), []string{"Check  in", "Check in"}, []string{"es"})
	assert.Equal(t, 1, scheduled, "whitespace variants share one cache entry")

	require.Eventually(t, func() bool {
		return svc.Stats().CacheSize == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestClearCacheResetsCounters(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{failErr: errors.New("boom")}
	svc := newTestService(t, provider, Options{})

	_ = svc.Translate(context.Background(), "Hello", "es", "en")
	require.Equal(t, uint64(1), svc.Stats().ProviderErrors)

	svc.ClearCache()

	stats := svc.Stats()
	assert.Zero(t, stats.CacheSize)
	assert.Zero(t, stats.CacheHits)
	assert.Zero(t, stats.CacheMisses)
	assert.Zero(t, stats.ProviderErrors)
}
