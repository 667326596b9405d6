package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/gate"
)

// RecorderConfig contains configuration for the audit recorder.
type RecorderConfig struct {
	// Buffer is the async write channel size. Default: 256.
	Buffer int

	// WriteTimeout bounds each storage write. Default: 5 seconds.
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Buffer:       256,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder implements gate.AuditSink by writing transitions to a Storage
// asynchronously. The gate calls RecordTransition while holding its lock, so
// the recorder must never block: when the buffer is full the event is dropped
// and counted, never queued against the hot path.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	eventCh chan *Event
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu      sync.Mutex
	dropped int64
}

// NewRecorder creates a Recorder draining into storage and starts its
// background worker.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.Buffer <= 0 {
		config.Buffer = 256
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		eventCh: make(chan *Event, config.Buffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// RecordTransition implements gate.AuditSink. It enqueues and returns
// immediately; a full buffer drops the event rather than blocking the gate.
func (r *Recorder) RecordTransition(t gate.Transition) {
	ev := &Event{
		ID:          uuid.New().String(),
		Kind:        t.Kind,
		Lane:        t.Lane,
		Operator:    t.Operator,
		BlockRate:   t.BlockRate,
		SampleCount: t.SampleCount,
		Threshold:   t.Threshold,
		OccurredAt:  t.At,
		RecordedAt:  time.Now(),
	}

	select {
	case r.eventCh <- ev:
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Error("audit buffer full, dropping transition",
			"kind", ev.Kind,
			"lane", ev.Lane,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns how many transitions were dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close drains pending events and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

// worker drains the event channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case ev := <-r.eventCh:
			r.write(ev)

		case <-r.done:
			for {
				select {
				case ev := <-r.eventCh:
					r.write(ev)
				default:
					return
				}
			}
		}
	}
}

// write persists one event with the configured timeout.
func (r *Recorder) write(ev *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, ev); err != nil {
		r.logger.Error("failed to store audit event",
			"event_id", ev.ID,
			"kind", ev.Kind,
			"error", err,
		)
		return
	}

	r.logger.Info("safety transition recorded",
		"event_id", ev.ID,
		"kind", ev.Kind,
		"lane", ev.Lane,
		"operator", ev.Operator,
		"block_rate", ev.BlockRate,
		"sample_count", ev.SampleCount,
		"threshold", ev.Threshold,
		"occurred_at", ev.OccurredAt,
	)
}
