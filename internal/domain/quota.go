package domain

import (
	"fmt"
	"time"
)

// QuotaSnapshot is the best-known rate-limit state reported by a provider's
// response headers. A zero limit means the provider did not report it.
type QuotaSnapshot struct {
	RequestsPerMinuteLimit     int
	RequestsPerMinuteRemaining int
	RequestsPerDayLimit        int
	RequestsPerDayRemaining    int
	Source                     string
	CapturedAt                 time.Time
}

// DailyUsed derives the requests consumed today from the daily figures.
func (q QuotaSnapshot) DailyUsed() (int, bool) {
	if q.RequestsPerDayLimit <= 0 {
		return 0, false
	}

	used := q.RequestsPerDayLimit - q.RequestsPerDayRemaining
	if used < 0 {
		used = 0
	}
	return used, true
}

func (q QuotaSnapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	if q.CapturedAt.IsZero() {
		return true
	}

	if maxAge <= 0 {
		return false
	}

	return now.Sub(q.CapturedAt) > maxAge
}

// ModelLimits are the published per-model request limits.
type ModelLimits struct {
	RPM int
	RPD int
}

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	Name        string
	DisplayName string
	Limits      ModelLimits
}

// Label renders the model for selection lists, e.g. "Gemini Flash (15 RPM, 1500/day)".
func (m ModelInfo) Label() string {
	name := m.DisplayName
	if name == "" {
		name = m.Name
	}

	switch {
	case m.Limits.RPM > 0 && m.Limits.RPD > 0:
		return fmt.Sprintf("%s (%d RPM, %d/day)", name, m.Limits.RPM, m.Limits.RPD)
	case m.Limits.RPM > 0:
		return fmt.Sprintf("%s (%d RPM)", name, m.Limits.RPM)
	default:
		return name
	}
}

// BestModel picks the model with the highest daily request limit.
func BestModel(models []ModelInfo) (ModelInfo, bool) {
	if len(models) == 0 {
		return ModelInfo{}, false
	}

	best := models[0]
	for _, m := range models[1:] {
		if m.Limits.RPD > best.Limits.RPD {
			best = m
		}
	}
	return best, true
}
