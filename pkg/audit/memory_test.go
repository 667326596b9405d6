package audit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func eventAt(id string, ts time.Time) *Event {
	return &Event{
		ID:         id,
		Kind:       "rollback_triggered",
		Lane:       "candidate",
		OccurredAt: ts,
		RecordedAt: ts,
	}
}

func TestMemoryStorage_StoreAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		ev := eventAt(fmt.Sprintf("ev-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.Store(ctx, ev); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	events, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	// Newest first.
	if events[0].ID != "ev-2" || events[2].ID != "ev-0" {
		t.Errorf("Expected newest-first ordering, got %s..%s", events[0].ID, events[2].ID)
	}
}

func TestMemoryStorage_ListLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)
	base := time.Now()
	for i := 0; i < 5; i++ {
		s.Store(ctx, eventAt(fmt.Sprintf("ev-%d", i), base))
	}

	events, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 events with limit 2, got %d", len(events))
	}
}

func TestMemoryStorage_Count(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)

	n, err := s.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Expected empty count, got %d (err %v)", n, err)
	}

	s.Store(ctx, eventAt("ev-1", time.Now()))
	n, _ = s.Count(ctx)
	if n != 1 {
		t.Errorf("Expected count 1, got %d", n)
	}
}

func TestMemoryStorage_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.Store(ctx, eventAt(fmt.Sprintf("ev-%d", i), base.Add(time.Duration(i)*time.Hour)))
	}

	deleted, err := s.DeleteOlderThan(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	n, _ := s.Count(ctx)
	if n != 3 {
		t.Errorf("Expected 3 remaining, got %d", n)
	}
}

func TestMemoryStorage_CapDropsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		s.Store(ctx, eventAt(fmt.Sprintf("ev-%d", i), base))
	}

	n, _ := s.Count(ctx)
	if n != 3 {
		t.Fatalf("Expected cap of 3, got %d", n)
	}

	events, _ := s.List(ctx, 10)
	if events[len(events)-1].ID != "ev-2" {
		t.Errorf("Expected oldest survivor ev-2, got %s", events[len(events)-1].ID)
	}
}
