package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/innkeep/localize/internal/language"
)

const myMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemoryProvider calls the free MyMemory translation API.
type MyMemoryProvider struct {
	endpoint string
	client   *http.Client
}

func NewMyMemoryProvider() *MyMemoryProvider {
	return &MyMemoryProvider{
		endpoint: myMemoryEndpoint,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *MyMemoryProvider) Name() string {
	return "mymemory"
}

func (p *MyMemoryProvider) SupportedLanguages() []string {
	return SupportedLanguageCodes()
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseStatus  any    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func (p *MyMemoryProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	if p == nil {
		return nil, fmt.Errorf("mymemory provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	sourceLang := language.NormalizeCode(req.SourceLang)
	if sourceLang == "" {
		// MyMemory requires an explicit language pair.
		sourceLang = "en"
	}
	targetLang := language.NormalizeCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", fmt.Sprintf("%s|%s", sourceLang, targetLang))
	requestURL := p.endpoint + "?" + query.Encode()

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build mymemory request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send mymemory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mymemory status %d", resp.StatusCode)
	}

	var parsed myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode mymemory response: %w", err)
	}

	// responseStatus is a number on success but a string on some errors.
	if status := fmt.Sprintf("%v", parsed.ResponseStatus); status != "200" {
		detail := strings.TrimSpace(parsed.ResponseDetails)
		if detail == "" {
			detail = "unknown error"
		}
		return nil, fmt.Errorf("mymemory response status %s: %s", status, detail)
	}

	translated := strings.TrimSpace(parsed.ResponseData.TranslatedText)
	if translated == "" {
		return nil, fmt.Errorf("mymemory response was empty")
	}

	return &Response{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}
