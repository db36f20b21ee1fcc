package domain

import "strings"

const (
	DefaultTTSService  = "tts.google_translate_say"
	ModernTTSNamespace = "tts"
	ModernTTSAction    = "speak"
)

var speechMarkers = []string{"*", "#", "- ", "`"}

// SpeechText joins title and body into one utterance with markdown markers
// and characters outside the Basic Multilingual Plane removed.
func SpeechText(title, body string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{title, body} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	text := strings.Join(parts, ". ")
	for _, marker := range speechMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}

	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return -1
		}
		return r
	}, text)
}

// RegionalLanguage expands a bare two-letter code: "en" becomes "en-EN".
func RegionalLanguage(code string) (string, bool) {
	if len(code) != 2 {
		return "", false
	}
	return strings.ToLower(code) + "-" + strings.ToUpper(code), true
}
