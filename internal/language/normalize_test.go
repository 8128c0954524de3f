package language

import "testing"

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	if got := NormalizeTag(" EN_us "); got != "en-us" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := NormalizeTag("zh-Hans"); got != "zh-hans" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := NormalizeTag("en--US"); got != "en-us" {
		t.Fatalf("unexpected collapsed tag: %q", got)
	}
	if got := NormalizeTag("fr-FR;q=0.8"); got != "fr-fr" {
		t.Fatalf("expected quality suffix to be stripped, got %q", got)
	}
	if got := NormalizeTag("en_123"); got != "" {
		t.Fatalf("expected invalid tag to normalize to empty string, got %q", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	if got := NormalizeCode(" EN-us "); got != "en" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode("zh"); got != "zh" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode(" "); got != "" {
		t.Fatalf("expected empty code for blank input, got %q", got)
	}
}

func TestRegion(t *testing.T) {
	t.Parallel()

	if got := Region("en-US"); got != "us" {
		t.Fatalf("unexpected region: %q", got)
	}
	if got := Region("pt"); got != "" {
		t.Fatalf("expected empty region for bare code, got %q", got)
	}
	if got := Region("zh-hans-cn"); got != "hans" {
		t.Fatalf("unexpected region subtag: %q", got)
	}
}

func TestSame(t *testing.T) {
	t.Parallel()

	if !Same("en-US", "EN_gb") {
		t.Fatal("expected matching primary subtags")
	}
	if Same("en", "fr") {
		t.Fatal("expected mismatched codes")
	}
	if Same("", "") {
		t.Fatal("blank tags must never compare as same")
	}
}
