package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/audit"
)

func storeEvents(t *testing.T, s audit.Storage, n int, start time.Time, step time.Duration) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		ev := &audit.Event{
			ID:         fmt.Sprintf("ev-%d", i),
			Kind:       "circuit_open",
			Lane:       "control",
			OccurredAt: start.Add(time.Duration(i) * step),
			RecordedAt: start.Add(time.Duration(i) * step),
		}
		if err := s.Store(ctx, ev); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}
}

func TestPruner_ByAge(t *testing.T) {
	ctx := context.Background()
	storage := audit.NewMemoryStorage(0)

	// 5 events, one per day, oldest 10 days back.
	storeEvents(t, storage, 5, time.Now().AddDate(0, 0, -10), 24*time.Hour)

	p := NewPruner(storage, Config{RetentionDays: 7})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	// Days -10, -9, -8 fall outside the 7 day retention.
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}

	n, _ := storage.Count(ctx)
	if n != 2 {
		t.Errorf("Expected 2 remaining, got %d", n)
	}
}

func TestPruner_ByCount(t *testing.T) {
	ctx := context.Background()
	storage := audit.NewMemoryStorage(0)
	storeEvents(t, storage, 10, time.Now().Add(-time.Hour), time.Minute)

	p := NewPruner(storage, Config{MaxRecords: 4})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 6 {
		t.Errorf("Expected 6 deleted, got %d", deleted)
	}

	n, _ := storage.Count(ctx)
	if n != 4 {
		t.Errorf("Expected 4 remaining, got %d", n)
	}

	// The newest events survive.
	events, _ := storage.List(ctx, 10)
	if events[0].ID != "ev-9" || events[len(events)-1].ID != "ev-6" {
		t.Errorf("Expected newest 4 to survive, got %s..%s", events[0].ID, events[len(events)-1].ID)
	}
}

func TestPruner_UnderCapIsNoOp(t *testing.T) {
	ctx := context.Background()
	storage := audit.NewMemoryStorage(0)
	storeEvents(t, storage, 3, time.Now().Add(-time.Hour), time.Minute)

	p := NewPruner(storage, Config{MaxRecords: 10})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected no deletions under the cap, got %d", deleted)
	}
}

func TestPruner_ZeroConfigPrunesNothing(t *testing.T) {
	ctx := context.Background()
	storage := audit.NewMemoryStorage(0)
	storeEvents(t, storage, 5, time.Now().AddDate(-1, 0, 0), time.Minute)

	p := NewPruner(storage, Config{})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected zero config to prune nothing, got %d", deleted)
	}
}

func TestScheduler_EmptyScheduleIsNoOp(t *testing.T) {
	p := NewPruner(audit.NewMemoryStorage(0), Config{})
	s := NewScheduler(p)

	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Expected no error for empty schedule, got %v", err)
	}
	s.Stop()
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	p := NewPruner(audit.NewMemoryStorage(0), Config{PruneSchedule: "not cron"})
	s := NewScheduler(p)

	if err := s.Start(context.Background()); err == nil {
		t.Error("Expected error for invalid cron expression")
	}
}

func TestScheduler_StartAndStop(t *testing.T) {
	p := NewPruner(audit.NewMemoryStorage(0), Config{PruneSchedule: "0 3 * * *", RetentionDays: 7})
	s := NewScheduler(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
	// Stop is idempotent.
	s.Stop()
}
