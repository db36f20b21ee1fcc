package domain

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	ErrorTitle = "Error"

	PlaceholderTitleEnglish = "Notification"
	PlaceholderTitleTurkish = "Bildirim"
)

// GenerationResult is the parsed model output handed to delivery targets.
type GenerationResult struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func ErrorResult(message string) GenerationResult {
	return GenerationResult{Title: ErrorTitle, Body: message}
}

func (r GenerationResult) IsError() bool {
	return r.Title == ErrorTitle
}

// WithCustomTitle replaces the title when custom is non-blank. The body is kept.
func (r GenerationResult) WithCustomTitle(custom string) GenerationResult {
	if trimmed := strings.TrimSpace(custom); trimmed != "" {
		r.Title = trimmed
	}
	return r
}

var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

type labelledField int

const (
	fieldTitle labelledField = iota
	fieldBody
)

var lineLabels = []struct {
	label string
	field labelledField
}{
	{label: "title:", field: fieldTitle},
	{label: "başlık:", field: fieldTitle},
	{label: "body:", field: fieldBody},
	{label: "gönderi:", field: fieldBody},
}

// ParseGenerationResult extracts a title and body from raw model text.
//
// Strict JSON is tried first, then the outermost {...} block. When either
// field is still empty the line scan runs: it starts from whatever the JSON
// branches produced (placeholder title, the untrimmed raw text as body
// otherwise) and overwrites a field for every labelled line it finds, so
// title and body may come from different branches.
func ParseGenerationResult(raw, placeholderTitle string) GenerationResult {
	text := strings.TrimSpace(raw)

	var parsed GenerationResult
	if decoded, ok := decodeResult(text); ok {
		parsed = decoded
	} else if block := jsonBlockPattern.FindString(text); block != "" {
		if decoded, ok := decodeResult(block); ok {
			parsed = decoded
		}
	}

	if parsed.Title != "" && parsed.Body != "" {
		return parsed
	}

	result := GenerationResult{Title: placeholderTitle, Body: raw}
	if parsed.Title != "" {
		result.Title = parsed.Title
	}
	if parsed.Body != "" {
		result.Body = parsed.Body
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, l := range lineLabels {
			value, ok := cutLabel(line, l.label)
			if !ok {
				continue
			}
			if l.field == fieldTitle {
				result.Title = value
			} else {
				result.Body = value
			}
			break
		}
	}

	return result
}

func decodeResult(text string) (GenerationResult, bool) {
	var payload struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return GenerationResult{}, false
	}
	if payload.Title == nil && payload.Body == nil {
		return GenerationResult{}, false
	}

	var result GenerationResult
	if payload.Title != nil {
		result.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Body != nil {
		result.Body = strings.TrimSpace(*payload.Body)
	}

	return result, true
}

// cutLabel matches label case-insensitively at the start of line, comparing
// runes so that localized labels fold correctly.
func cutLabel(line, label string) (string, bool) {
	labelRunes := []rune(label)
	lineRunes := []rune(line)
	if len(lineRunes) < len(labelRunes) {
		return "", false
	}
	if !strings.EqualFold(string(lineRunes[:len(labelRunes)]), label) {
		return "", false
	}

	return strings.TrimSpace(string(lineRunes[len(labelRunes):])), true
}
