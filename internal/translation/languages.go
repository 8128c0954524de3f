package translation

import (
	"sort"
	"strings"

	"github.com/innkeep/localize/internal/language"
)

// LanguageOption is one selectable language for UI pickers.
type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var languageLabels = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"th": "Thai",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// SupportedLanguageCodes lists the codes the pipeline presents by default.
func SupportedLanguageCodes() []string {
	codes := make([]string, 0, len(languageLabels))
	for code := range languageLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LanguageLabel returns a display label for code, falling back to the
// uppercased code for languages outside the label table.
func LanguageLabel(code string) string {
	normalized := language.NormalizeCode(code)
	if label, ok := languageLabels[normalized]; ok {
		return label
	}
	return strings.ToUpper(normalized)
}

// LanguageOptions merges the built-in label table with every language the
// registered providers claim to support.
func LanguageOptions(registry *Registry) []LanguageOption {
	supported := map[string]struct{}{}
	for code := range languageLabels {
		supported[code] = struct{}{}
	}

	if registry != nil {
		for _, provider := range registry.providers {
			for _, code := range provider.SupportedLanguages() {
				normalized := language.NormalizeCode(code)
				if normalized == "" {
					continue
				}
				supported[normalized] = struct{}{}
			}
		}
	}

	codes := make([]string, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	options := make([]LanguageOption, 0, len(codes))
	for _, code := range codes {
		options = append(options, LanguageOption{
			Code:  code,
			Label: LanguageLabel(code),
		})
	}
	return options
}
