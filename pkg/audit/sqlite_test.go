package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")

	s, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	want := &Event{
		ID:          "ev-1",
		Kind:        "rollback_triggered",
		Lane:        "candidate",
		BlockRate:   0.5,
		SampleCount: 20,
		Threshold:   0.8,
		OccurredAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		RecordedAt:  time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC),
	}
	if err := s.Store(ctx, want); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	events, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	got := events[0]
	if got.ID != want.ID || got.Kind != want.Kind || got.Lane != want.Lane {
		t.Errorf("Unexpected event identity: %+v", got)
	}
	if got.BlockRate != want.BlockRate || got.SampleCount != want.SampleCount || got.Threshold != want.Threshold {
		t.Errorf("Unexpected monitor fields: %+v", got)
	}
	if !got.OccurredAt.Equal(want.OccurredAt) {
		t.Errorf("Expected occurred_at %v, got %v", want.OccurredAt, got.OccurredAt)
	}
}

func TestSQLiteStorage_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := eventAt(fmt.Sprintf("ev-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.Store(ctx, ev); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	events, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events with limit, got %d", len(events))
	}
	if events[0].ID != "ev-4" || events[2].ID != "ev-2" {
		t.Errorf("Expected newest-first ordering, got %s..%s", events[0].ID, events[2].ID)
	}
}

func TestSQLiteStorage_CountAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		s.Store(ctx, eventAt(fmt.Sprintf("ev-%d", i), base.Add(time.Duration(i)*time.Hour)))
	}

	n, err := s.Count(ctx)
	if err != nil || n != 4 {
		t.Fatalf("Expected count 4, got %d (err %v)", n, err)
	}

	deleted, err := s.DeleteOlderThan(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	n, _ = s.Count(ctx)
	if n != 2 {
		t.Errorf("Expected 2 remaining, got %d", n)
	}
}

func TestSQLiteStorage_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	ev := eventAt("ev-dup", time.Now())
	if err := s.Store(ctx, ev); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := s.Store(ctx, ev); err == nil {
		t.Error("Expected primary key violation on duplicate id")
	}
}

func TestSQLiteStorage_ReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	cfg := DefaultSQLiteConfig()
	cfg.Path = path
	s, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	if err := s.Store(ctx, eventAt("ev-1", time.Now())); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	cfg2 := DefaultSQLiteConfig()
	cfg2.Path = path
	s2, err := NewSQLiteStorage(cfg2)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	n, err := s2.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Expected 1 persisted event after reopen, got %d (err %v)", n, err)
	}
}
