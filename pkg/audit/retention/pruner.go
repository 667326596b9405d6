// Package retention prunes old audit events so the transition log does not
// grow without bound.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/callisto/pkg/audit"
)

// Config contains retention configuration.
type Config struct {
	// RetentionDays is how long events are kept. Zero disables age pruning.
	RetentionDays int

	// MaxRecords caps the number of stored events. Zero disables the cap.
	MaxRecords int64

	// PruneSchedule is a standard cron expression for scheduled pruning,
	// e.g. "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	PruneSchedule string
}

// Pruner deletes audit events past the retention policy.
type Pruner struct {
	storage audit.Storage
	config  Config
	logger  *slog.Logger
}

// NewPruner creates a pruner over storage.
func NewPruner(storage audit.Storage, config Config) *Pruner {
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// Prune runs one pruning cycle and returns how many events were deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var deleted int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
		n, err := p.storage.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return deleted, fmt.Errorf("retention: prune by age: %w", err)
		}
		deleted += n
	}

	if p.config.MaxRecords > 0 {
		n, err := p.pruneByCount(ctx)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}

	if deleted > 0 {
		p.logger.Info("audit events pruned",
			"deleted", deleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}
	return deleted, nil
}

// pruneByCount enforces the record cap by deleting the oldest events. It
// walks the cutoff back from the newest surviving event rather than issuing
// backend-specific LIMIT deletes, so it works on any Storage.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("retention: count: %w", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	// Events come back newest first; the oldest survivor marks the cutoff.
	survivors, err := p.storage.List(ctx, int(p.config.MaxRecords))
	if err != nil {
		return 0, fmt.Errorf("retention: list survivors: %w", err)
	}
	if len(survivors) == 0 {
		return 0, nil
	}
	cutoff := survivors[len(survivors)-1].OccurredAt

	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention: prune by count: %w", err)
	}
	return deleted, nil
}
