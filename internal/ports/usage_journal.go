package ports

import (
	"context"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
)

// CallRecord is one provider call as written to the usage journal.
type CallRecord struct {
	RequestID string
	At        time.Time
	Provider  domain.ProviderID
	Model     string
	Status    string
	Error     string
	Duration  time.Duration
	Quota     *domain.QuotaSnapshot
}

// DailyCount is the number of successful calls on one local date.
type DailyCount struct {
	Day   time.Time
	Count int
}

// UsageUpdate applies one call to the counters stored in the journal.
type UsageUpdate func(*domain.UsageCounters)

type UsageJournal interface {
	// Record appends the call and applies update to the stored counters in
	// the same transaction, returning the merged state.
	Record(ctx context.Context, record CallRecord, update UsageUpdate) (domain.UsageCounters, *domain.QuotaSnapshot, error)
	Load(ctx context.Context) (domain.UsageCounters, *domain.QuotaSnapshot, error)
	DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
}
