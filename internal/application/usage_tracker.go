package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
)

// UsageTracker owns the usage counters and the last quota snapshot of one
// installation. All mutation goes through it; concurrent generations
// serialize on its lock. The journal, when set, persists every call so that
// separate processes see the same daily count.
type UsageTracker struct {
	mu       sync.Mutex
	journal  ports.UsageJournal
	clock    ports.Clock
	counters domain.UsageCounters
	quota    *domain.QuotaSnapshot
}

// UsageSnapshot is a copy of the tracker state at one instant.
type UsageSnapshot struct {
	Counters domain.UsageCounters
	Quota    *domain.QuotaSnapshot
}

func NewUsageTracker(journal ports.UsageJournal, clock ports.Clock) *UsageTracker {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &UsageTracker{journal: journal, clock: clock}
}

func (t *UsageTracker) RecordSuccess(ctx context.Context, record ports.CallRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := t.at(record)
	return t.applyLocked(ctx, record, func(counters *domain.UsageCounters) {
		counters.RecordSuccess(at, record.Quota)
	})
}

func (t *UsageTracker) RecordFailure(ctx context.Context, record ports.CallRecord, callErr error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := t.at(record)
	if callErr != nil {
		record.Error = domain.TruncateError(callErr.Error(), domain.ErrorExcerptLimit)
	}

	return t.applyLocked(ctx, record, func(counters *domain.UsageCounters) {
		counters.RecordFailure(at, callErr)
	})
}

// Snapshot returns the current state, applying the lazy day reset first. The
// journal is re-read on every call so counts written by other processes show
// up. A journal load error is returned alongside the in-memory state.
func (t *UsageTracker) Snapshot(ctx context.Context) (UsageSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	loadErr := t.refreshLocked(ctx)
	t.counters.ResetIfNewDay(t.clock.Now())

	snapshot := UsageSnapshot{Counters: t.counters}
	if t.quota != nil {
		quota := *t.quota
		snapshot.Quota = &quota
	}

	return snapshot, loadErr
}

// History returns per-day successful call counts since the given day.
func (t *UsageTracker) History(ctx context.Context, since time.Time) ([]ports.DailyCount, error) {
	if t.journal == nil {
		return nil, nil
	}

	counts, err := t.journal.DailyCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load usage history: %w", err)
	}

	return counts, nil
}

func (t *UsageTracker) at(record ports.CallRecord) time.Time {
	if record.At.IsZero() {
		return t.clock.Now()
	}
	return record.At
}

func (t *UsageTracker) refreshLocked(ctx context.Context) error {
	if t.journal == nil {
		return nil
	}

	counters, quota, err := t.journal.Load(ctx)
	if err != nil {
		return fmt.Errorf("load usage state: %w", err)
	}

	t.counters = counters
	t.quota = quota
	return nil
}

// applyLocked lets the journal merge the call into the stored counters and
// adopts the result. Without a journal, or when the write fails, the call is
// applied to the in-memory state instead.
func (t *UsageTracker) applyLocked(ctx context.Context, record ports.CallRecord, update ports.UsageUpdate) error {
	if t.journal != nil {
		counters, quota, err := t.journal.Record(ctx, record, update)
		if err == nil {
			t.counters = counters
			t.quota = quota
			return nil
		}
		t.applyLocal(record, update)
		return fmt.Errorf("record usage: %w", err)
	}

	t.applyLocal(record, update)
	return nil
}

func (t *UsageTracker) applyLocal(record ports.CallRecord, update ports.UsageUpdate) {
	update(&t.counters)
	if record.Quota != nil {
		quota := *record.Quota
		t.quota = &quota
	}
}
