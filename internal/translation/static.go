package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/innkeep/localize/internal/language"
)

// StaticProvider translates from a fixed in-memory dictionary, falling back
// to a "[lang] text" marker for unknown phrases. It backs offline
// development and tests, where deterministic output matters more than
// translation quality.
type StaticProvider struct {
	// dictionary maps target language -> source text -> translated text.
	dictionary map[string]map[string]string
	delay      time.Duration
}

// NewStaticProvider builds a static provider. A nil dictionary yields marker
// translations only.
func NewStaticProvider(dictionary map[string]map[string]string) *StaticProvider {
	return &StaticProvider{dictionary: dictionary}
}

// NewStaticProviderWithDelay adds an artificial per-call delay, useful for
// exercising debounce and singleflight behavior in tests.
func NewStaticProviderWithDelay(dictionary map[string]map[string]string, delay time.Duration) *StaticProvider {
	return &StaticProvider{dictionary: dictionary, delay: delay}
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) SupportedLanguages() []string {
	return SupportedLanguageCodes()
}

func (p *StaticProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	if p == nil {
		return nil, fmt.Errorf("static provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	targetLang := language.NormalizeCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	translated := ""
	if phrases, ok := p.dictionary[targetLang]; ok {
		translated = phrases[text]
	}
	if translated == "" {
		translated = fmt.Sprintf("[%s] %s", targetLang, text)
	}

	return &Response{
		Text:         translated,
		SourceLang:   language.NormalizeCode(req.SourceLang),
		TargetLang:   targetLang,
		ProviderName: p.Name(),
	}, nil
}
