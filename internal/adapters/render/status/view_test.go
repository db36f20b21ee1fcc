package status

import (
	"testing"
	"time"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUsageWithKnownLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	output, err := Render(application.UsageStatus{
		Provider: domain.ProviderGemini,
		Model:    "gemini-flash-latest",
		Counters: domain.UsageCounters{
			DailyCount:     40,
			LastCallStatus: domain.CallStatusSuccess,
			LastCallTime:   now.Add(-2*time.Hour - 45*time.Minute),
			LastReset:      now,
		},
		DailyLimit: 250,
		Remaining:  210,
	}, RenderOptions{Now: now, StaleAfter: 6 * time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "NotifyAI Usage")
	assert.Contains(t, output, "gemini / gemini-flash-latest")
	assert.Contains(t, output, "40 / 250")
	assert.Contains(t, output, "84% left")
	assert.Contains(t, output, "resets in 13 hours")
	assert.Contains(t, output, "remaining today: 210")
	assert.Contains(t, output, "last call: success at 08:15")
	assert.NotContains(t, output, "last error")
	assert.NotContains(t, output, "stale")
}

func TestRenderUsageWithUnknownLimitAndError(t *testing.T) {
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	output, err := Render(application.UsageStatus{
		Provider: domain.ProviderGroq,
		Model:    "llama-3.3-70b-versatile",
		Counters: domain.UsageCounters{
			DailyCount:     1200,
			LastCallStatus: domain.CallStatusError,
			LastCallTime:   now.AddDate(0, 0, -1),
			LastError:      "status 503",
		},
		DailyLimit: -1,
		Remaining:  -1,
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "1.2k (limit unknown)")
	assert.Contains(t, output, "remaining today: unknown")
	assert.Contains(t, output, "error at 11:00 on 28 Feb")
	assert.Contains(t, output, "last error: status 503")
}

func TestRenderMarksStaleQuota(t *testing.T) {
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	output, err := Render(application.UsageStatus{
		Provider:   domain.ProviderGroq,
		Model:      "llama-3.1-8b-instant",
		DailyLimit: 14400,
		Remaining:  14000,
		Quota: &domain.QuotaSnapshot{
			RequestsPerMinuteLimit:     30,
			RequestsPerMinuteRemaining: 28,
			CapturedAt:                 now.Add(-8 * time.Hour),
		},
	}, RenderOptions{Now: now, StaleAfter: 6 * time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "per minute: 28 of 30 left")
	assert.Contains(t, output, "[stale]")
	assert.Contains(t, output, "no calls yet")
}

func TestRenderHistoryChart(t *testing.T) {
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	history := make([]ports.DailyCount, 0, 7)
	for i := 0; i < 7; i++ {
		history = append(history, ports.DailyCount{Day: time.Date(2026, 2, 23+i, 0, 0, 0, 0, time.UTC), Count: i * 3})
	}

	output, err := Render(application.UsageStatus{
		Provider:   domain.ProviderGemini,
		Model:      "gemini-flash-latest",
		DailyLimit: -1,
		Remaining:  -1,
		History:    history,
	}, RenderOptions{Now: now, ChartWidth: 30})

	require.NoError(t, err)
	assert.Contains(t, output, "calls per day, 23 Feb to 01 Mar")
	assert.Contains(t, output, "18")
}

func TestRenderWithoutProvider(t *testing.T) {
	output, err := Render(application.UsageStatus{DailyLimit: -1, Remaining: -1}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No provider configured")
}

func TestRenderProgressBarShowsRemainingShare(t *testing.T) {
	s := newStyles()

	assert.Equal(t, "[======----]", renderProgressBar(40, 10, s))
	assert.Equal(t, "[----------]", renderProgressBar(140, 10, s))
	assert.Equal(t, "", renderProgressBar(50, 0, s))
}

func TestFormatResetRelative(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 20, 0, 0, time.UTC)

	assert.Equal(t, "resets in 40 min", formatResetRelative(nextMidnight(now), now))
	assert.Equal(t, "resets now", formatResetRelative(now, now))
	assert.Equal(t, "resets in 13 hours", formatResetRelative(now.Add(13*time.Hour), now))
}

func TestInterpolateColorBounds(t *testing.T) {
	assert.Equal(t, "240", string(interpolateColor(0, 0, 100)))
	assert.Equal(t, "255", string(interpolateColor(100, 0, 100)))
	assert.Equal(t, "255", string(interpolateColor(5, 1, 1)))
}
