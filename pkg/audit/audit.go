// Package audit persists gate safety state transitions so that "why was
// enforcement off at time T" can be answered after the fact.
//
// The gate itself holds no history; it is a live interlock. This package is
// the reference implementation of its audit collaborator: an async Recorder
// implementing gate.AuditSink, backed by a pluggable Storage (in-memory or
// SQLite), with retention pruning in the retention subpackage. A host may
// substitute any other gate.AuditSink, or none.
package audit

import (
	"context"
	"time"
)

// Event is one persisted safety state transition.
type Event struct {
	// ID is a generated UUID.
	ID string

	// Kind mirrors the gate transition kinds: circuit_open,
	// rollback_triggered, manual_reset.
	Kind string

	// Lane is the lane the transition concerns; empty for manual resets.
	Lane string

	// Operator is the operator who requested a manual reset; empty otherwise.
	Operator string

	// BlockRate, SampleCount and Threshold carry the rollback monitor's
	// computation for rollback events; zero otherwise.
	BlockRate   float64
	SampleCount int
	Threshold   float64

	// OccurredAt is the gate-clock time of the transition.
	OccurredAt time.Time

	// RecordedAt is when the event reached storage.
	RecordedAt time.Time
}

// Storage is the persistence backend for audit events.
type Storage interface {
	// Store persists one event.
	Store(ctx context.Context, ev *Event) error

	// List returns up to limit events, newest first.
	List(ctx context.Context, limit int) ([]*Event, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan removes events that occurred before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
