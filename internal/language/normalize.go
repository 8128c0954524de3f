package language

import "strings"

// NormalizeTag canonicalizes a language tag: lowercase, "-" separators,
// alphabetic subtags only. Blank or malformed values normalize to "".
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	// Accept-Language entries may carry a quality suffix ("en-US;q=0.8").
	if semi := strings.IndexByte(trimmed, ';'); semi >= 0 {
		trimmed = strings.TrimSpace(trimmed[:semi])
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	subtags := make([]string, 0, 3)
	for _, subtag := range strings.Split(trimmed, "-") {
		subtag = strings.TrimSpace(subtag)
		if subtag == "" {
			continue
		}
		if !isAlphaLower(subtag) {
			return ""
		}
		subtags = append(subtags, subtag)
	}

	if len(subtags) == 0 {
		return ""
	}
	return strings.Join(subtags, "-")
}

// NormalizeCode reduces a tag to its primary language subtag ("en" from "en-US").
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

// Region returns the secondary subtag of a tag, or "" when absent ("us" from "en-US").
func Region(raw string) string {
	tag := NormalizeTag(raw)
	dash := strings.IndexByte(tag, '-')
	if dash < 0 {
		return ""
	}
	rest := tag[dash+1:]
	if next := strings.IndexByte(rest, '-'); next >= 0 {
		rest = rest[:next]
	}
	return rest
}

// Same reports whether two tags share the same primary language subtag.
func Same(a, b string) bool {
	codeA := NormalizeCode(a)
	return codeA != "" && codeA == NormalizeCode(b)
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
