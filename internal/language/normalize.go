package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

// NormalizeTag lowercases a language tag and uses "-" separators.
// Returns an empty string when the value is blank or contains invalid characters.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '-' || r == '_' })
	for _, part := range parts {
		if !isAlphaLower(part) {
			return ""
		}
	}
	return strings.Join(parts, "-")
}

// Code returns the two-letter primary language of a tag ("en" for "EN_us"),
// or "" when the tag is not a known language with a two-letter code.
func Code(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	parsed, err := xlanguage.Parse(tag)
	if err != nil {
		return ""
	}
	base, confidence := parsed.Base()
	if confidence == xlanguage.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
