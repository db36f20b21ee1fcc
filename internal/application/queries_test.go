package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsageStatusEstimatesRemainingFromPublishedLimit(t *testing.T) {
	f := newFixture("")
	f.settings.settings.ModelLimits = map[string]domain.ModelLimits{domain.DefaultGeminiModel: {RPM: 10, RPD: 250}}
	f.journal.counters = domain.UsageCounters{DailyCount: 40, LastReset: f.clock.now, LastCallStatus: domain.CallStatusSuccess}
	service := f.service()

	status, err := service.GetUsageStatus(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 40, status.Counters.DailyCount)
	assert.Equal(t, 250, status.DailyLimit)
	assert.Equal(t, 210, status.Remaining)
	assert.Equal(t, domain.DefaultGeminiModel, status.Model)
	attrs := status.Attributes()
	assert.Equal(t, "gemini", attrs["provider"])
	assert.Equal(t, domain.DefaultGeminiModel, attrs["current_model"])
	assert.Equal(t, 40, attrs["daily_count"])
	assert.Equal(t, "2026-03-01", attrs["last_reset"])
	assert.NotContains(t, attrs, "last_error")
}

func TestGetUsageStatusPrefersTodaysQuota(t *testing.T) {
	f := newFixture("")
	f.journal.counters = domain.UsageCounters{DailyCount: 3, LastReset: f.clock.now}
	f.journal.quota = &domain.QuotaSnapshot{
		RequestsPerDayLimit:     14400,
		RequestsPerDayRemaining: 14000,
		RequestsPerMinuteLimit:  30,
		Source:                  "headers",
		CapturedAt:              f.clock.now.Add(-time.Hour),
	}

	status, err := f.service().GetUsageStatus(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 14400, status.DailyLimit)
	assert.Equal(t, 14000, status.Remaining)
	assert.Equal(t, 30, status.Attributes()["rpm_limit"])
}

func TestGetUsageStatusUnknownLimit(t *testing.T) {
	f := newFixture("")

	status, err := f.service().GetUsageStatus(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, -1, status.DailyLimit)
	assert.Equal(t, -1, status.Remaining)
}

func TestGetUsageStatusResetsStaleCount(t *testing.T) {
	f := newFixture("")
	f.journal.counters = domain.UsageCounters{DailyCount: 99, LastReset: f.clock.now.AddDate(0, 0, -1)}

	status, err := f.service().GetUsageStatus(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, status.Counters.DailyCount)
}

func TestGetUsageStatusHistoryIsZeroFilled(t *testing.T) {
	f := newFixture("")
	today := startOfDay(f.clock.now)
	f.journal.history = []ports.DailyCount{
		{Day: today.AddDate(0, 0, -2), Count: 5},
		{Day: today, Count: 2},
	}

	status, err := f.service().GetUsageStatus(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, status.History, 3)
	assert.Equal(t, []int{5, 0, 2}, []int{status.History[0].Count, status.History[1].Count, status.History[2].Count})
	assert.True(t, status.History[2].Day.Equal(today))
}

func TestGetUsageStatusKeepsInMemoryCountersWhenJournalFails(t *testing.T) {
	f := newFixture("")
	f.journal.loadErr = errors.New("database is locked")

	status, err := f.service().GetUsageStatus(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Counters.DailyCount)
}

func TestListModelsCachesLimits(t *testing.T) {
	f := newFixture("")
	f.provider.models = []domain.ModelInfo{
		{Name: "gemini-2.5-pro", Limits: domain.ModelLimits{RPM: 5, RPD: 100}},
		{Name: "gemini-flash-latest", Limits: domain.ModelLimits{RPM: 10, RPD: 250}},
		{Name: "gemini-exp"},
	}

	catalog, err := f.service().ListModels(context.Background())
	require.NoError(t, err)

	assert.Len(t, catalog.Models, 3)
	require.NotNil(t, catalog.Best)
	assert.Equal(t, "gemini-flash-latest", catalog.Best.Name)
	assert.Equal(t, map[string]domain.ModelLimits{
		"gemini-2.5-pro":      {RPM: 5, RPD: 100},
		"gemini-flash-latest": {RPM: 10, RPD: 250},
	}, f.settings.settings.ModelLimits)
}

func TestListModelsWithoutLimitsLeavesSettingsUntouched(t *testing.T) {
	f := newFixture("")
	f.provider.models = []domain.ModelInfo{{Name: "llama-3.1-8b-instant"}}

	catalog, err := f.service().ListModels(context.Background())
	require.NoError(t, err)

	assert.Len(t, catalog.Models, 1)
	assert.Equal(t, 0, f.settings.saves)
}

func TestSettingsDefaultsBeforeFirstConfiguration(t *testing.T) {
	service := newCommandService(&memorySettings{}, newMemorySecrets(nil), nil)

	settings, err := service.Settings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, settings.Provider)
	assert.Empty(t, settings.Targets)
}
