// Package detect guesses a user's language from several signals: a text
// sample, the browser locale, and a geolocation hint. Each signal yields a
// confidence-scored result tagged with its provenance.
package detect

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hashicorp/golang-lru/v2/expirable"
	lingua "github.com/pemistahl/lingua-go"

	"github.com/innkeep/localize/internal/language"
)

// Source tags which signal produced a detection result.
type Source string

const (
	SourceText    Source = "text"
	SourceBrowser Source = "browser"
	SourceGeo     Source = "geo"
	SourceCache   Source = "cache"
	SourceNone    Source = "none"
)

const (
	// minSampleLetters is the minimum number of letters before a text sample
	// is trusted; shorter samples like "ok" misclassify too often.
	minSampleLetters = 6
	// shortSampleConfidenceCap bounds the confidence of sub-threshold samples.
	shortSampleConfidenceCap = 0.4
	// browserConfidence is fixed: the browser locale may not match content.
	browserConfidence = 0.6
	// geoConfidence is the weakest signal: location is not language.
	geoConfidence = 0.3

	defaultMemoTTL  = 30 * time.Second
	defaultMemoSize = 256
)

// Result is one language guess with its confidence and provenance.
type Result struct {
	LanguageCode string  `json:"language_code"`
	Confidence   float64 `json:"confidence"`
	Source       Source  `json:"source"`
	// Reliable is false for sub-threshold text samples and absent signals.
	Reliable bool `json:"reliable"`
}

// Available reports whether the result carries a usable language guess.
func (r Result) Available() bool {
	return r.LanguageCode != ""
}

var (
	linguaOnce     sync.Once
	linguaDetector lingua.LanguageDetector
)

func sharedLinguaDetector() lingua.LanguageDetector {
	linguaOnce.Do(func() {
		linguaDetector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return linguaDetector
}

// Detector combines detection signals and memoizes recent results.
type Detector struct {
	locales LocaleSource
	memo    *expirable.LRU[string, Result]
}

// Option configures a Detector.
type Option func(*options)

type options struct {
	memoTTL  time.Duration
	memoSize int
}

// WithMemoTTL overrides how long detection results stay memoized.
func WithMemoTTL(ttl time.Duration) Option {
	return func(o *options) { o.memoTTL = ttl }
}

// WithMemoSize overrides the memo capacity.
func WithMemoSize(size int) Option {
	return func(o *options) { o.memoSize = size }
}

// New builds a detector over the given locale/geo signal source. A nil
// source behaves as if no browser or geo signal were available.
func New(locales LocaleSource, opts ...Option) *Detector {
	o := options{
		memoTTL:  defaultMemoTTL,
		memoSize: defaultMemoSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if locales == nil {
		locales = StaticSource{}
	}
	return &Detector{
		locales: locales,
		memo:    expirable.NewLRU[string, Result](o.memoSize, nil, o.memoTTL),
	}
}

// FromText classifies the language of sample. Samples below the minimum
// letter count still produce a guess, but with capped confidence and
// Reliable set to false.
func (d *Detector) FromText(sample string) Result {
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return unavailable()
	}

	values := sharedLinguaDetector().ComputeLanguageConfidenceValues(sample)
	if len(values) == 0 {
		return unavailable()
	}
	top := values[0]
	code := strings.ToLower(top.Language().IsoCode639_1().String())
	if len(code) != 2 {
		return unavailable()
	}

	confidence := top.Value()
	reliable := letterCount(sample) >= minSampleLetters
	if !reliable && confidence > shortSampleConfidenceCap {
		confidence = shortSampleConfidenceCap
	}

	return Result{
		LanguageCode: code,
		Confidence:   confidence,
		Source:       SourceText,
		Reliable:     reliable,
	}
}

// FromBrowser reads the runtime locale hint. Confidence is a fixed moderate
// constant: the user's locale often differs from the content language.
func (d *Detector) FromBrowser() Result {
	return browserResult(d.locales)
}

// FromGeo resolves the geolocation hint, the lowest-confidence fallback.
// An unavailable or failing hint source yields a zero-confidence result,
// never an error.
func (d *Detector) FromGeo(ctx context.Context) Result {
	return geoResult(ctx, d.locales)
}

func browserResult(locales LocaleSource) Result {
	code := language.NormalizeCode(locales.BrowserLocale())
	if code == "" {
		return unavailable()
	}
	return Result{
		LanguageCode: code,
		Confidence:   browserConfidence,
		Source:       SourceBrowser,
		Reliable:     true,
	}
}

func geoResult(ctx context.Context, locales LocaleSource) Result {
	hint, err := locales.GeoHint(ctx)
	if err != nil {
		return unavailable()
	}
	code := language.NormalizeCode(hint)
	if code == "" {
		return unavailable()
	}
	return Result{
		LanguageCode: code,
		Confidence:   geoConfidence,
		Source:       SourceGeo,
		Reliable:     true,
	}
}

// Detect combines the available signals. A sample meeting the minimum
// length wins outright; otherwise the highest-priority available signal is
// returned (browser over geo over an unreliable text guess). Recent text
// classifications for the same sample are memoized and returned with Source
// set to "cache".
func (d *Detector) Detect(ctx context.Context, sample string) Result {
	return d.DetectWith(ctx, sample, d.locales)
}

// DetectWith runs detection with request-scoped locale signals while sharing
// the detector's memo. Servers hold one detector per session and pass each
// request's browser and geo hints here; only text-derived guesses are
// memoized, so signals from one request never answer another.
func (d *Detector) DetectWith(ctx context.Context, sample string, locales LocaleSource) Result {
	if locales == nil {
		locales = StaticSource{}
	}
	sample = strings.TrimSpace(sample)

	var textGuess Result
	if sample != "" {
		if memoized, ok := d.memo.Get(sample); ok {
			memoized.Source = SourceCache
			if memoized.Reliable {
				return memoized
			}
			// An unreliable memoized guess re-enters the ranking below the
			// locale signals, same as a fresh classification.
			textGuess = memoized
		} else {
			textGuess = d.FromText(sample)
			if textGuess.Available() {
				d.memo.Add(sample, textGuess)
			}
			if textGuess.Reliable {
				return textGuess
			}
		}
	}

	ranked := []Result{browserResult(locales), geoResult(ctx, locales)}
	if textGuess.Available() {
		ranked = append(ranked, textGuess)
	}

	// ranked is ordered by signal priority; the first available guess wins.
	// An unreliable text guess ranks below both locale signals.
	for _, candidate := range ranked {
		if candidate.Available() {
			return candidate
		}
	}
	return unavailable()
}

// ClearCache drops all memoized detection results.
func (d *Detector) ClearCache() {
	d.memo.Purge()
}

func unavailable() Result {
	return Result{Source: SourceNone}
}

func letterCount(sample string) int {
	count := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			count++
		}
	}
	return count
}
