// Package sqlite persists the usage journal: one row per provider call plus
// the current usage counters, so every process sees the same daily count.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"

	_ "modernc.org/sqlite"
)

const journalFileName = "usage.db"

// Times are stored as RFC 3339 text so SQLite date functions and the driver
// agree on the format.
const timeLayout = time.RFC3339Nano

type Journal struct {
	db   *sql.DB
	path string
}

var _ ports.UsageJournal = (*Journal)(nil)

// DefaultPath returns the journal location inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, journalFileName)
}

func Open(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// The pragmas below are per connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.configure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := j.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return j, nil
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := j.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS api_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT,
		called_at TEXT NOT NULL,
		day TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		duration_ms INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_api_calls_day ON api_calls(day);

	CREATE TABLE IF NOT EXISTS usage_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		daily_count INTEGER NOT NULL DEFAULT 0,
		last_call_time TEXT,
		last_call_status TEXT,
		last_error TEXT,
		last_reset TEXT,
		quota TEXT
	);
	`
	if _, err := j.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Record appends the call, then reads the stored counters, applies update and
// writes them back in one transaction. The insert comes first so the
// transaction holds the write lock before it reads, and calls from other
// processes are never overwritten. The stored quota is only replaced when the
// call carried one.
func (j *Journal) Record(ctx context.Context, record ports.CallRecord, update ports.UsageUpdate) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UsageCounters{}, nil, fmt.Errorf("begin journal transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO api_calls (request_id, called_at, day, provider, model, status, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(record.RequestID),
		record.At.Format(timeLayout),
		record.At.Format(time.DateOnly),
		string(record.Provider),
		record.Model,
		record.Status,
		nullString(record.Error),
		record.Duration.Milliseconds(),
	)
	if err != nil {
		return domain.UsageCounters{}, nil, fmt.Errorf("insert api call: %w", err)
	}

	counters, quota, err := loadState(ctx, tx)
	if err != nil {
		return domain.UsageCounters{}, nil, err
	}
	if update != nil {
		update(&counters)
	}
	if record.Quota != nil {
		captured := *record.Quota
		quota = &captured
	}

	var quotaRaw sql.NullString
	if quota != nil {
		raw, err := json.Marshal(quota)
		if err != nil {
			return domain.UsageCounters{}, nil, fmt.Errorf("encode quota snapshot: %w", err)
		}
		quotaRaw = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_state (id, daily_count, last_call_time, last_call_status, last_error, last_reset, quota)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			daily_count = excluded.daily_count,
			last_call_time = excluded.last_call_time,
			last_call_status = excluded.last_call_status,
			last_error = excluded.last_error,
			last_reset = excluded.last_reset,
			quota = excluded.quota`,
		counters.DailyCount,
		formatTime(counters.LastCallTime),
		nullString(counters.LastCallStatus),
		nullString(counters.LastError),
		formatTime(counters.LastReset),
		quotaRaw,
	)
	if err != nil {
		return domain.UsageCounters{}, nil, fmt.Errorf("update usage state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.UsageCounters{}, nil, fmt.Errorf("commit journal transaction: %w", err)
	}
	return counters, quota, nil
}

func (j *Journal) Load(ctx context.Context) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	return loadState(ctx, j.db)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadState(ctx context.Context, q rowQuerier) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	var (
		counters                                 domain.UsageCounters
		lastCallTime, status, lastErr, lastReset sql.NullString
		quotaRaw                                 sql.NullString
	)

	err := q.QueryRowContext(ctx, `
		SELECT daily_count, last_call_time, last_call_status, last_error, last_reset, quota
		FROM usage_state WHERE id = 1`,
	).Scan(&counters.DailyCount, &lastCallTime, &status, &lastErr, &lastReset, &quotaRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UsageCounters{}, nil, nil
	}
	if err != nil {
		return domain.UsageCounters{}, nil, fmt.Errorf("load usage state: %w", err)
	}

	counters.LastCallStatus = status.String
	counters.LastError = lastErr.String
	if counters.LastCallTime, err = parseTime(lastCallTime); err != nil {
		return domain.UsageCounters{}, nil, err
	}
	if counters.LastReset, err = parseTime(lastReset); err != nil {
		return domain.UsageCounters{}, nil, err
	}

	if !quotaRaw.Valid {
		return counters, nil, nil
	}
	var quota domain.QuotaSnapshot
	if err := json.Unmarshal([]byte(quotaRaw.String), &quota); err != nil {
		return domain.UsageCounters{}, nil, fmt.Errorf("decode quota snapshot: %w", err)
	}
	return counters, &quota, nil
}

// DailyCounts returns the successful calls per day from since onwards,
// oldest first. Days without calls are omitted.
func (j *Journal) DailyCounts(ctx context.Context, since time.Time) ([]ports.DailyCount, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT day, COUNT(*) FROM api_calls
		WHERE status = ? AND day >= ?
		GROUP BY day ORDER BY day`,
		domain.CallStatusSuccess, since.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []ports.DailyCount
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		parsed, err := time.ParseInLocation(time.DateOnly, day, since.Location())
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		counts = append(counts, ports.DailyCount{Day: parsed, Count: count})
	}

	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(timeLayout), Valid: true}
}

func parseTime(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", v.String, err)
	}
	return t, nil
}
