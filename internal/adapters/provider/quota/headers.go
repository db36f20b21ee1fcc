// Package quota reads rate-limit response headers into a QuotaSnapshot.
package quota

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
)

// Daily request figures use the OpenAI-compatible names Groq sends; the bare
// x-ratelimit-limit/remaining pair is read as the per-minute window.
const (
	HeaderDayLimit        = "X-Ratelimit-Limit-Requests"
	HeaderDayRemaining    = "X-Ratelimit-Remaining-Requests"
	HeaderMinuteLimit     = "X-Ratelimit-Limit"
	HeaderMinuteRemaining = "X-Ratelimit-Remaining"
)

// FromHeaders returns nil when the response carries no rate-limit header.
func FromHeaders(h http.Header, source string, now time.Time) *domain.QuotaSnapshot {
	dayLimit, hasDayLimit := intHeader(h, HeaderDayLimit)
	dayRemaining, hasDayRemaining := intHeader(h, HeaderDayRemaining)
	minuteLimit, hasMinuteLimit := intHeader(h, HeaderMinuteLimit)
	minuteRemaining, hasMinuteRemaining := intHeader(h, HeaderMinuteRemaining)

	if !hasDayLimit && !hasDayRemaining && !hasMinuteLimit && !hasMinuteRemaining {
		return nil
	}

	return &domain.QuotaSnapshot{
		RequestsPerMinuteLimit:     minuteLimit,
		RequestsPerMinuteRemaining: minuteRemaining,
		RequestsPerDayLimit:        dayLimit,
		RequestsPerDayRemaining:    dayRemaining,
		Source:                     source,
		CapturedAt:                 now,
	}
}

func intHeader(h http.Header, name string) (int, bool) {
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return 0, false
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
