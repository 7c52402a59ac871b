package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Languages the extraction service accepts for plain-text input.
var supported = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Japanese,
	lingua.Chinese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter code of the text's language, or ""
// when the sample is too short or ambiguous.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}
	if runes := []rune(sample); len(runes) > 4096 {
		sample = string(runes[:4096])
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// RequestLanguage is DetectISO6391 with a fallback for undetected text.
func RequestLanguage(text, fallback string) string {
	if code := DetectISO6391(text); code != "" {
		return code
	}
	return fallback
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			Build()
	})
	return detector
}
