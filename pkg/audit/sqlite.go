package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true.
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/audit.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStorage implements Storage using SQLite via the pure-Go driver.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	lane         TEXT NOT NULL DEFAULT '',
	operator     TEXT NOT NULL DEFAULT '',
	block_rate   REAL NOT NULL DEFAULT 0,
	sample_count INTEGER NOT NULL DEFAULT 0,
	threshold    REAL NOT NULL DEFAULT 0,
	occurred_at  INTEGER NOT NULL,
	recorded_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_occurred_at ON transitions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_transitions_kind ON transitions(kind);
`

// NewSQLiteStorage opens (or creates) the audit database and applies the
// schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite %q: %w", config.Path, err)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "audit.storage.sqlite"),
	}

	if config.BusyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeout.Milliseconds())); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit: set busy_timeout: %w", err)
		}
	}
	if config.WALMode {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit: enable WAL: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}

	s.logger.Info("audit storage opened",
		"path", config.Path,
		"wal", config.WALMode,
	)
	return s, nil
}

// Store implements Storage.
func (s *SQLiteStorage) Store(ctx context.Context, ev *Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions
		 (id, kind, lane, operator, block_rate, sample_count, threshold, occurred_at, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Kind, ev.Lane, ev.Operator,
		ev.BlockRate, ev.SampleCount, ev.Threshold,
		ev.OccurredAt.UnixNano(), ev.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("audit: store event %s: %w", ev.ID, err)
	}
	return nil
}

// List implements Storage, returning newest first.
func (s *SQLiteStorage) List(ctx context.Context, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, lane, operator, block_rate, sample_count, threshold, occurred_at, recorded_at
		 FROM transitions ORDER BY occurred_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var ev Event
		var occurred, recorded int64
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Lane, &ev.Operator,
			&ev.BlockRate, &ev.SampleCount, &ev.Threshold, &occurred, &recorded); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		ev.OccurredAt = time.Unix(0, occurred)
		ev.RecordedAt = time.Unix(0, recorded)
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// Count implements Storage.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transitions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("audit: count events: %w", err)
	}
	return n, nil
}

// DeleteOlderThan implements Storage.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transitions WHERE occurred_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("audit: delete old events: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("audit: rows affected: %w", err)
	}
	return deleted, nil
}

// Close implements Storage.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
