// Package translator is the façade used by UI code: it accepts raw text and
// a target language, consults the cache, detector, debouncer and dispatcher,
// and returns translated text with live statistics.
package translator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/innkeep/localize/internal/cache"
	"github.com/innkeep/localize/internal/debounce"
	"github.com/innkeep/localize/internal/detect"
	"github.com/innkeep/localize/internal/dispatch"
	"github.com/innkeep/localize/internal/language"
	"github.com/innkeep/localize/internal/translation"
)

// DefaultDebounceInterval is used when no interval is configured.
const DefaultDebounceInterval = 400 * time.Millisecond

// Options configures a Service.
type Options struct {
	CacheCapacity     int
	Workers           int
	DebounceInterval  time.Duration
	DefaultSourceLang string
	// Clock is injected by tests; nil means the real clock.
	Clock clockwork.Clock
}

// Result is the outcome of one translation request. Translation never fails
// at this boundary: provider errors degrade to the original text.
type Result struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	Cached     bool   `json:"cached"`
	// Degraded marks a provider failure answered with the untranslated text.
	Degraded bool `json:"degraded"`
}

// Statistics aggregates live cache and dispatcher state.
type Statistics struct {
	CacheSize           int     `json:"cache_size"`
	CacheHits           uint64  `json:"cache_hits"`
	CacheMisses         uint64  `json:"cache_misses"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	PendingTranslations int     `json:"pending_translations"`
	QueueLength         int     `json:"queue_length"`
	ProviderErrors      uint64  `json:"provider_errors"`
	DebounceWindows     int     `json:"debounce_windows"`
}

// Service owns one session's cache, dispatcher and debounce windows.
// Sessions are independent: separate Service instances never share state.
type Service struct {
	provider translation.Provider
	detector *detect.Detector
	store    *cache.Cache
	queue    *dispatch.Dispatcher
	windows  *debounce.Debouncer
	log      zerolog.Logger
	opts     Options

	providerErrors atomic.Uint64

	waitersMu sync.Mutex
	waiters   map[string][]chan Result
	// epochs advances on every debounced call per inputID; a fire callback
	// may only settle waiters while its epoch is still the latest.
	epochs map[string]uint64
}

// New builds a translation service over the given provider and detector.
func New(provider translation.Provider, detector *detect.Detector, opts Options, logger zerolog.Logger) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("translation provider is required")
	}
	if detector == nil {
		detector = detect.New(nil)
	}
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = DefaultDebounceInterval
	}
	opts.DefaultSourceLang = language.NormalizeCode(opts.DefaultSourceLang)
	if opts.DefaultSourceLang == "" {
		opts.DefaultSourceLang = "en"
	}

	store := cache.New(opts.CacheCapacity)
	queue, err := dispatch.New(opts.Workers, store)
	if err != nil {
		return nil, err
	}

	return &Service{
		provider: provider,
		detector: detector,
		store:    store,
		queue:    queue,
		windows:  debounce.New(opts.Clock),
		log:      logger.With().Str("component", "translator").Logger(),
		opts:     opts,
		waiters:  make(map[string][]chan Result),
		epochs:   make(map[string]uint64),
	}, nil
}

// Translate returns text rendered in targetLang. Empty input and
// same-language requests pass through unchanged without touching the cache
// counters; provider failures degrade to the original text and are counted,
// never surfaced as errors.
func (s *Service) Translate(ctx context.Context, text, targetLang, sourceLangHint string) Result {
	trimmed := strings.TrimSpace(text)
	targetCode := language.NormalizeCode(targetLang)

	if trimmed == "" || targetCode == "" {
		return Result{Text: text, TargetLang: targetCode}
	}

	sourceCode := s.resolveSourceLang(ctx, trimmed, sourceLangHint)
	if sourceCode == targetCode {
		return Result{Text: text, SourceLang: sourceCode, TargetLang: targetCode}
	}

	key := cache.Key{
		Text:       normalizeKeyText(trimmed),
		TargetLang: targetCode,
		SourceLang: sourceCode,
	}
	if value, ok := s.store.Get(key); ok {
		return Result{Text: value, SourceLang: sourceCode, TargetLang: targetCode, Cached: true}
	}

	value, err := s.queue.Request(ctx, key, func(callCtx context.Context) (string, error) {
		resp, performErr := s.provider.Translate(callCtx, translation.Request{
			Text:       trimmed,
			SourceLang: sourceCode,
			TargetLang: targetCode,
		})
		if performErr != nil {
			return "", performErr
		}
		translated := strings.TrimSpace(resp.Text)
		if translated == "" {
			return "", fmt.Errorf("provider %s returned an empty translation", s.provider.Name())
		}
		return translated, nil
	})
	if err != nil {
		s.providerErrors.Add(1)
		s.log.Warn().Err(err).
			Str("target_lang", targetCode).
			Str("source_lang", sourceCode).
			Msg("translation failed, serving original text")
		return Result{Text: text, SourceLang: sourceCode, TargetLang: targetCode, Degraded: true}
	}

	return Result{Text: value, SourceLang: sourceCode, TargetLang: targetCode}
}

// TranslateDebounced coalesces rapid successive calls for the same inputID:
// only the text from the last call within the debounce window is translated.
// Every returned channel for that window settles with the final result, so
// callers that subscribed early still receive the up-to-date answer. Each
// channel carries exactly one result and is then closed; a window cancelled
// via CancelDebounce closes its channels without a value.
func (s *Service) TranslateDebounced(ctx context.Context, inputID, text, targetLang, sourceLangHint string) <-chan Result {
	out := make(chan Result, 1)

	if strings.TrimSpace(text) == "" {
		// Empty input short-circuits: no timer, no network, no cache. A
		// pending window for this input is stale now and resolves empty too.
		s.windows.Cancel(inputID)
		result := Result{Text: text, TargetLang: language.NormalizeCode(targetLang)}
		s.resolveWaiters(inputID, s.bumpEpoch(inputID), result)
		out <- result
		close(out)
		return out
	}

	s.waitersMu.Lock()
	s.epochs[inputID]++
	epoch := s.epochs[inputID]
	s.waiters[inputID] = append(s.waiters[inputID], out)
	s.waitersMu.Unlock()

	// The callback belongs to the latest call, so the freshest target and
	// hint win together with the freshest text.
	callCtx := context.WithoutCancel(ctx)
	s.windows.Schedule(inputID, text, s.opts.DebounceInterval, func(finalText string) {
		s.resolveWaiters(inputID, epoch, s.Translate(callCtx, finalText, targetLang, sourceLangHint))
	})

	return out
}

// CancelDebounce drops a pending window for inputID, closing subscriber
// channels without a result. Used on widget teardown.
func (s *Service) CancelDebounce(inputID string) {
	s.windows.Cancel(inputID)

	s.waitersMu.Lock()
	s.epochs[inputID]++
	waiting := s.waiters[inputID]
	delete(s.waiters, inputID)
	s.waitersMu.Unlock()

	for _, ch := range waiting {
		close(ch)
	}
}

// resolveWaiters settles the subscribers for inputID, unless a newer
// debounced call arrived after epoch: a translation that finished once its
// window was superseded carries stale text, so its result is dropped (it is
// already cached) and the newest window settles everyone.
func (s *Service) resolveWaiters(inputID string, epoch uint64, result Result) {
	s.waitersMu.Lock()
	if s.epochs[inputID] != epoch {
		s.waitersMu.Unlock()
		return
	}
	waiting := s.waiters[inputID]
	delete(s.waiters, inputID)
	s.waitersMu.Unlock()

	for _, ch := range waiting {
		ch <- result
		close(ch)
	}
}

func (s *Service) bumpEpoch(inputID string) uint64 {
	s.waitersMu.Lock()
	defer s.waitersMu.Unlock()
	s.epochs[inputID]++
	return s.epochs[inputID]
}

// Preload warms the cache for common phrases across several target
// languages without blocking the caller. Phrases are assumed to be in the
// session's default source language; already-cached entries and phrases that
// collapse to an already-scheduled cache key are skipped. It returns how
// many entries were actually scheduled.
func (s *Service) Preload(ctx context.Context, texts []string, targetLangs []string) int {
	callCtx := context.WithoutCancel(ctx)

	type job struct {
		text       string
		targetLang string
	}
	seen := make(map[cache.Key]struct{})
	var jobs []job
	for _, lang := range targetLangs {
		targetCode := language.NormalizeCode(lang)
		if targetCode == "" || targetCode == s.opts.DefaultSourceLang {
			continue
		}
		for _, text := range texts {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				continue
			}
			key := cache.Key{
				Text:       normalizeKeyText(trimmed),
				TargetLang: targetCode,
				SourceLang: s.opts.DefaultSourceLang,
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if s.store.Contains(key) {
				continue
			}
			jobs = append(jobs, job{text: trimmed, targetLang: targetCode})
		}
	}

	go func() {
		group := new(errgroup.Group)
		group.SetLimit(dispatchLimit(s.opts.Workers))

		for _, j := range jobs {
			j := j
			group.Go(func() error {
				s.Translate(callCtx, j.text, j.targetLang, s.opts.DefaultSourceLang)
				return nil
			})
		}

		_ = group.Wait()
		s.log.Debug().Int("scheduled", len(jobs)).Msg("cache warm-up finished")
	}()

	return len(jobs)
}

// ClearCache empties the translation cache and resets its counters,
// including the provider error counter.
func (s *Service) ClearCache() {
	s.store.Clear()
	s.providerErrors.Store(0)
}

// ClearDetectionCache drops memoized language detections.
func (s *Service) ClearDetectionCache() {
	s.detector.ClearCache()
}

// Detector exposes the session's language detector.
func (s *Service) Detector() *detect.Detector {
	return s.detector
}

// CacheEntries lists the cached translations for diagnostic UIs.
func (s *Service) CacheEntries() []cache.Entry {
	return s.store.Entries()
}

// Stats snapshots the live cache, dispatcher and debounce state.
func (s *Service) Stats() Statistics {
	cacheStats := s.store.Stats()
	queueStats := s.queue.Stats()
	return Statistics{
		CacheSize:           cacheStats.Size,
		CacheHits:           cacheStats.Hits,
		CacheMisses:         cacheStats.Misses,
		CacheHitRate:        cacheStats.HitRate,
		PendingTranslations: queueStats.Pending,
		QueueLength:         queueStats.Queued,
		ProviderErrors:      s.providerErrors.Load(),
		DebounceWindows:     s.windows.Len(),
	}
}

// Close cancels pending debounce windows, releases their subscribers and
// shuts down the dispatch pool. In-flight provider calls are not cancelled.
func (s *Service) Close() {
	s.windows.CancelAll()

	s.waitersMu.Lock()
	waiters := s.waiters
	s.waiters = make(map[string][]chan Result)
	s.waitersMu.Unlock()
	for _, waiting := range waiters {
		for _, ch := range waiting {
			close(ch)
		}
	}

	s.queue.Close()
}

func (s *Service) resolveSourceLang(ctx context.Context, sample, hint string) string {
	if code := language.NormalizeCode(hint); code != "" {
		return code
	}
	if guess := s.detector.Detect(ctx, sample); guess.Available() {
		return guess.LanguageCode
	}
	return s.opts.DefaultSourceLang
}

// normalizeKeyText collapses interior whitespace so visually identical
// inputs share one cache entry.
func normalizeKeyText(trimmed string) string {
	return strings.Join(strings.Fields(trimmed), " ")
}

func dispatchLimit(workers int) int {
	if workers <= 0 {
		return dispatch.DefaultWorkers
	}
	return workers
}
