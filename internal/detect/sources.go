package detect

import (
	"context"
	"os"
	"strings"
)

// LocaleSource supplies the browser-locale and geolocation signals. Both may
// be unavailable without raising; implementations return "" (and GeoHint may
// return an error, which the detector treats as absence).
type LocaleSource interface {
	BrowserLocale() string
	GeoHint(ctx context.Context) (string, error)
}

// StaticSource returns fixed signal values. The HTTP layer builds one per
// request from Accept-Language and edge geo headers; the zero value means no
// signal is available.
type StaticSource struct {
	Locale string
	Geo    string
}

func (s StaticSource) BrowserLocale() string { return s.Locale }

func (s StaticSource) GeoHint(context.Context) (string, error) { return s.Geo, nil }

// EnvSource reads the process locale environment, the CLI analog of the
// browser locale, plus an optional LOCALIZE_GEO_HINT override.
type EnvSource struct{}

func (EnvSource) BrowserLocale() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG", "LANGUAGE"} {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" || strings.EqualFold(value, "c") || strings.EqualFold(value, "posix") {
			continue
		}
		// Locale values look like "en_US.UTF-8"; the codeset is noise here.
		if dot := strings.IndexByte(value, '.'); dot >= 0 {
			value = value[:dot]
		}
		return value
	}
	return ""
}

func (EnvSource) GeoHint(context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv("LOCALIZE_GEO_HINT")), nil
}
