package langdetect

import "testing"

func TestDetectISO6391(t *testing.T) {
	t.Parallel()

	got := DetectISO6391("The company designs, manufactures and markets smartphones, personal computers and wearables.")
	if got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
}

func TestDetectISO6391ShortSample(t *testing.T) {
	t.Parallel()

	if got := DetectISO6391("  ab 12 "); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestRequestLanguageFallback(t *testing.T) {
	t.Parallel()

	if got := RequestLanguage("", "en"); got != "en" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := RequestLanguage("Das Unternehmen hat seinen Hauptsitz in München und beschäftigt viele Menschen.", "en"); got != "de" {
		t.Fatalf("expected de, got %q", got)
	}
}
