package domain

import (
	"fmt"
	"strings"
	"time"
)

const DefaultMode = "smart"

// GenerationRequest is one notification-generation attempt.
type GenerationRequest struct {
	Event     string
	Context   string
	Mode      string
	Persona   string
	TimeLabel string
	Image     []byte
}

func TimeLabel(t time.Time) string {
	return t.Format("15:04")
}

func (r GenerationRequest) UserMessage() string {
	mode := strings.TrimSpace(r.Mode)
	if mode == "" {
		mode = DefaultMode
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\nTime: %s\nMode: %s", r.Event, r.TimeLabel, mode)
	if ctx := strings.TrimSpace(r.Context); ctx != "" {
		fmt.Fprintf(&b, "\nContext: %s", ctx)
	}

	return b.String()
}

// SystemPrompt appends the persona instruction to base. A persona supersedes
// the mode setting for this request only.
func (r GenerationRequest) SystemPrompt(base string) string {
	persona := strings.TrimSpace(r.Persona)
	if persona == "" {
		return base
	}

	return base + fmt.Sprintf(
		"\n\nIMPORTANT: You must adopt the persona of '%s'. Ignore the standard 'Mode' setting. Act exactly like %s would.",
		persona, persona,
	)
}
