package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
)

// UsageStatus is the read-only view behind the daily-count, remaining and
// limit sensors. DailyLimit and Remaining are -1 when unknown.
type UsageStatus struct {
	Provider   domain.ProviderID
	Model      string
	Counters   domain.UsageCounters
	DailyLimit int
	Remaining  int
	Quota      *domain.QuotaSnapshot
	History    []ports.DailyCount
}

// Attributes are the metadata every usage sensor exposes.
func (u UsageStatus) Attributes() map[string]any {
	attrs := map[string]any{
		"provider":         string(u.Provider),
		"current_model":    u.Model,
		"daily_count":      u.Counters.DailyCount,
		"last_call_status": u.Counters.LastCallStatus,
	}
	if !u.Counters.LastCallTime.IsZero() {
		attrs["last_call_time"] = u.Counters.LastCallTime.Format(time.RFC3339)
	}
	if !u.Counters.LastReset.IsZero() {
		attrs["last_reset"] = u.Counters.LastReset.Format(time.DateOnly)
	}
	if u.Counters.LastError != "" {
		attrs["last_error"] = u.Counters.LastError
	}
	if u.Quota != nil {
		attrs["quota_source"] = u.Quota.Source
		if u.Quota.RequestsPerMinuteLimit > 0 {
			attrs["rpm_limit"] = u.Quota.RequestsPerMinuteLimit
			attrs["rpm_remaining"] = u.Quota.RequestsPerMinuteRemaining
		}
	}
	return attrs
}

type ModelCatalog struct {
	Models []domain.ModelInfo
	Best   *domain.ModelInfo
}

// Settings returns the stored settings, or the defaults before the first
// configuration.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	return s.loadOrDefaultSettings(ctx)
}

// GetUsageStatus derives the sensor values. historyDays > 0 also loads the
// per-day counts of the last historyDays days, today included.
func (s *Service) GetUsageStatus(ctx context.Context, historyDays int) (UsageStatus, error) {
	settings, err := s.loadOrDefaultSettings(ctx)
	if err != nil {
		return UsageStatus{}, err
	}

	snapshot, err := s.usage.Snapshot(ctx)
	if err != nil {
		s.log.WithError(err).Warn("usage state unavailable, showing in-memory counters")
	}

	status := UsageStatus{
		Provider:   settings.Provider,
		Model:      settings.EffectiveModel(),
		Counters:   snapshot.Counters,
		Quota:      snapshot.Quota,
		DailyLimit: -1,
		Remaining:  -1,
	}

	now := s.clock.Now()
	quotaToday := snapshot.Quota != nil && snapshot.Quota.RequestsPerDayLimit > 0 && sameDay(snapshot.Quota.CapturedAt, now)

	if limit, ok := settings.DailyLimit(); ok {
		status.DailyLimit = limit
	} else if quotaToday {
		status.DailyLimit = snapshot.Quota.RequestsPerDayLimit
	}

	switch {
	case quotaToday:
		status.Remaining = snapshot.Quota.RequestsPerDayRemaining
	case status.DailyLimit >= 0:
		status.Remaining = max(status.DailyLimit-snapshot.Counters.DailyCount, 0)
	}

	if historyDays > 0 {
		since := startOfDay(now).AddDate(0, 0, -(historyDays - 1))
		history, err := s.usage.History(ctx, since)
		if err != nil {
			return UsageStatus{}, err
		}
		status.History = fillHistory(history, since, historyDays)
	}

	return status, nil
}

// ListModels fetches the provider catalog and caches the published limits in
// the settings so the limit sensor can report them offline.
func (s *Service) ListModels(ctx context.Context) (ModelCatalog, error) {
	provider, settings, err := s.provider(ctx)
	if err != nil {
		return ModelCatalog{}, err
	}

	models, err := provider.ListModels(ctx)
	if err != nil {
		return ModelCatalog{}, fmt.Errorf("list %s models: %w", provider.ID(), err)
	}

	catalog := ModelCatalog{Models: models}
	if best, ok := domain.BestModel(models); ok {
		catalog.Best = &best
	}

	limits := make(map[string]domain.ModelLimits, len(models))
	for _, m := range models {
		if m.Limits.RPM > 0 || m.Limits.RPD > 0 {
			limits[m.Name] = m.Limits
		}
	}
	if len(limits) > 0 {
		settings.ModelLimits = limits
		if err := s.settings.Save(ctx, settings); err != nil {
			return ModelCatalog{}, fmt.Errorf("save model limits: %w", err)
		}
	}

	return catalog, nil
}

// ValidateModel probes model with a minimal request. A rate-limited probe is
// reported as ErrQuotaExceeded, every other rejection as ErrInvalidModel.
func (s *Service) ValidateModel(ctx context.Context, model string) error {
	provider, _, err := s.provider(ctx)
	if err != nil {
		return err
	}

	if err := provider.ValidateModel(ctx, model); err != nil {
		var providerErr *domain.ProviderError
		if errors.As(err, &providerErr) && providerErr.QuotaExceeded() {
			return fmt.Errorf("%w: %s: %w", ErrQuotaExceeded, model, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrInvalidModel, model, err)
	}

	return nil
}

// fillHistory returns one entry per day, zero-filling days without calls.
func fillHistory(counts []ports.DailyCount, since time.Time, days int) []ports.DailyCount {
	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Day.Format(time.DateOnly)] += c.Count
	}

	out := make([]ports.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i)
		out = append(out, ports.DailyCount{Day: day, Count: byDay[day.Format(time.DateOnly)]})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	return startOfDay(a.In(b.Location())).Equal(startOfDay(b))
}
