package domain

import (
	"fmt"
	"time"
)

// ErrorExcerptLimit bounds the error text kept in UsageCounters.
const ErrorExcerptLimit = 200

const (
	CallStatusSuccess = "success"
	CallStatusError   = "error"
)

// UsageCounters is the rolling call telemetry of one installation.
// DailyCount never decreases within a calendar day and is reset lazily,
// the first time it is observed on a later date than LastReset.
type UsageCounters struct {
	DailyCount     int
	LastCallTime   time.Time
	LastCallStatus string
	LastError      string
	LastReset      time.Time
}

// ResetIfNewDay zeroes DailyCount when now falls on a later local date than
// LastReset. It reports whether a reset happened.
func (u *UsageCounters) ResetIfNewDay(now time.Time) bool {
	if u.LastReset.IsZero() {
		u.DailyCount = 0
		u.LastReset = now
		return true
	}

	if !startOfDay(u.LastReset.In(now.Location())).Before(startOfDay(now)) {
		return false
	}

	u.DailyCount = 0
	u.LastReset = now
	return true
}

// RecordSuccess registers a successful provider call. With a quota snapshot
// carrying daily figures the count follows the provider's own tally,
// otherwise it is estimated by counting this call.
func (u *UsageCounters) RecordSuccess(now time.Time, quota *QuotaSnapshot) {
	u.ResetIfNewDay(now)
	u.LastCallTime = now
	u.LastCallStatus = CallStatusSuccess
	u.LastError = ""

	if quota != nil {
		if used, ok := quota.DailyUsed(); ok {
			u.DailyCount = max(u.DailyCount, used)
			return
		}
	}
	u.DailyCount++
}

func (u *UsageCounters) RecordFailure(now time.Time, err error) {
	u.ResetIfNewDay(now)
	u.LastCallTime = now
	u.LastCallStatus = CallStatusError
	if err != nil {
		u.LastError = TruncateError(err.Error(), ErrorExcerptLimit)
	}
}

// TruncateError cuts s to at most limit runes.
func TruncateError(s string, limit int) string {
	runes := []rune(s)
	if limit < 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func compactNumber(v int64) string {
	if v < 1_000 {
		return fmt.Sprintf("%d", v)
	}

	if v < 1_000_000 {
		return fmt.Sprintf("%.1fk", float64(v)/1_000)
	}

	return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
}

// CompactCount formats a request count for narrow status output.
func CompactCount(v int) string {
	return compactNumber(int64(v))
}
