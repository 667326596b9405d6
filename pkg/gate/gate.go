package gate

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/killswitch"
)

// Gate is the enforcement interlock façade. It owns all mutable state —
// per-lane breakers, per-lane decision windows, and the sticky rollback flag —
// under a single mutex.
//
// Construct one Gate at process startup and pass it to request handlers by
// dependency injection; fresh instances keep unit tests isolated.
type Gate struct {
	cfg     Config
	monitor rollbackMonitor

	mu       sync.Mutex
	circuits *circuitRegistry
	windows  map[string]*decisionWindow

	// rollbackTriggered is sticky: once set it survives every RecordDecision
	// until an operator calls ResetRollback.
	rollbackTriggered bool
	rollbackAt        time.Time

	ks      killswitch.Switch
	metrics MetricsSink
	audit   AuditSink
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Gate from cfg. Malformed thresholds fail here, never at call
// time.
func New(cfg Config) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ks := cfg.KillSwitch
	if ks == nil && cfg.KillSwitchPath != "" {
		ks = killswitch.File{Path: cfg.KillSwitchPath}
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopSink{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "gate")
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Gate{
		cfg: cfg,
		monitor: rollbackMonitor{
			minRate:    cfg.MinCriticalBlockRate,
			window:     cfg.RollbackWindow,
			minSamples: cfg.MinSamplesForRollback,
		},
		circuits: newCircuitRegistry(),
		windows:  make(map[string]*decisionWindow),
		ks:       ks,
		metrics:  metrics,
		audit:    cfg.Audit,
		logger:   logger,
		now:      now,
	}, nil
}

// ShouldEnforce decides whether the evaluator's verdict should be enforced
// for lane. Checks run in order and short-circuit, each independently
// attributable in telemetry:
//
//  1. kill switch engaged → false (emergency_disabled)
//  2. lane breaker open → false (circuit_open); an elapsed open period is
//     first flipped closed, the only mutation this method performs
//  3. rollback tripped → false (rollback_active), regardless of lane
//  4. configured mode → true iff ModeEnforce; unknown lanes are logging-only
//
// reqCtx is host request context carried through for diagnostics only; it
// never influences the decision.
func (g *Gate) ShouldEnforce(lane string, reqCtx map[string]any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	// Polled on every call, never cached: the kill switch must take effect
	// within one call of the sentinel appearing.
	if g.ks != nil && g.ks.Engaged() {
		return g.denyLocked(lane, ReasonEmergencyDisabled, reqCtx)
	}

	if cs := g.circuits.peek(lane); cs != nil {
		if cs.isOpen(now) {
			return g.denyLocked(lane, ReasonCircuitOpen, reqCtx)
		}
		if cs.recoverIfElapsed(now) {
			g.logger.Info("circuit breaker recovered",
				"lane", lane,
				"timestamp", now,
			)
		}
	}

	if g.rollbackTriggered {
		return g.denyLocked(lane, ReasonRollbackActive, reqCtx)
	}

	mode := g.laneMode(lane)
	enforced := mode == ModeEnforce
	g.emitDecisionLocked(lane, string(mode), enforced)
	return enforced
}

// RecordDecision appends one evaluator outcome to the lane's window, evicts
// expired records, and — for the monitored lane only — runs the rollback
// check. Expected operational conditions never surface as errors.
func (g *Gate) RecordDecision(lane, action string, critical, blocked bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	w := g.windowFor(lane)
	w.append(DecisionRecord{
		Timestamp: now,
		Action:    action,
		Critical:  critical,
		Blocked:   blocked,
	})
	w.evictOlderThan(now.Add(-(g.cfg.RollbackWindow + evictionGrace)))

	if lane != g.cfg.MonitorLane {
		return
	}

	v := g.monitor.evaluate(w, now)
	g.metrics.SetGauge(MetricCriticalBlockRate, map[string]string{"lane": lane}, v.stats.CriticalBlockRate)

	// Idempotent once tripped: re-entering the branch while already
	// triggered is a no-op.
	if v.tripped && !g.rollbackTriggered {
		g.tripRollbackLocked(lane, now, v)
	}
}

// RecordCircuitFailure counts one evaluator error against the lane's breaker
// and opens it at the configured threshold. Evaluator failures are expected
// operational data, so this never returns an error.
func (g *Gate) RecordCircuitFailure(lane, errMsg string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cs := g.circuits.get(lane)
	opened := cs.recordFailure(now, g.cfg.CircuitFailureThreshold, g.cfg.CircuitRecovery)

	g.metrics.Increment(MetricCircuitFailures, map[string]string{"lane": lane})

	if opened {
		g.logger.Warn("circuit breaker opened",
			"lane", lane,
			"failures", cs.failures,
			"threshold", g.cfg.CircuitFailureThreshold,
			"open_until", cs.openUntil,
			"last_error", errMsg,
		)
		g.metrics.Increment(MetricCircuitOpened, map[string]string{"lane": lane})
		g.recordTransitionLocked(Transition{
			Kind: TransitionCircuitOpen,
			Lane: lane,
			At:   now,
		})
	} else {
		g.logger.Debug("evaluator failure recorded",
			"lane", lane,
			"failures", cs.failures,
			"threshold", g.cfg.CircuitFailureThreshold,
			"error", errMsg,
		)
	}
}

// Status returns a read-only snapshot of the gate: global safety state, the
// rollback flag, and per-lane mode, breaker and window statistics. It never
// mutates circuit or rollback state, so repeated calls with no intervening
// mutation return identical snapshots.
func (g *Gate) Status() StatusSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-g.cfg.RollbackWindow)

	lanes := make(map[string]LaneStatus)
	for lane := range g.cfg.Lanes {
		lanes[lane] = LaneStatus{Mode: g.laneMode(lane)}
	}
	for lane := range g.windows {
		if _, ok := lanes[lane]; !ok {
			lanes[lane] = LaneStatus{Mode: g.laneMode(lane)}
		}
	}
	for lane := range g.circuits.lanes {
		if _, ok := lanes[lane]; !ok {
			lanes[lane] = LaneStatus{Mode: g.laneMode(lane)}
		}
	}

	anyOpen := false
	anyFailures := false
	for lane, ls := range lanes {
		if cs := g.circuits.peek(lane); cs != nil {
			ls.CircuitOpen = cs.isOpen(now)
			ls.CircuitFailures = cs.failures
			anyOpen = anyOpen || ls.CircuitOpen
			anyFailures = anyFailures || cs.failures > 0
		}
		if w, ok := g.windows[lane]; ok {
			ls.Window = w.stats(cutoff)
		}
		lanes[lane] = ls
	}

	state := StateHealthy
	switch {
	case g.rollbackTriggered:
		state = StateEmergencyRollback
	case anyOpen:
		state = StateCircuitOpen
	case anyFailures:
		state = StateDegraded
	}

	return StatusSnapshot{
		State:             state,
		RollbackTriggered: g.rollbackTriggered,
		GeneratedAt:       now,
		Lanes:             lanes,
	}
}

// ResetRollback is the manual-only escape hatch. It clears the sticky
// rollback flag and wipes every lane's decision history: stale pre-rollback
// samples must not count toward re-evaluating the same incident. The operator
// identifier is required for audit and must be non-empty.
func (g *Gate) ResetRollback(operatorID string) error {
	if operatorID == "" {
		return fmt.Errorf("reset rollback: operator id required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.rollbackTriggered = false
	g.rollbackAt = time.Time{}
	for _, w := range g.windows {
		w.clear()
	}

	g.logger.Info("rollback manually reset",
		"operator", operatorID,
		"timestamp", now,
	)
	g.metrics.Increment(MetricResets, map[string]string{"operator": operatorID})
	g.recordTransitionLocked(Transition{
		Kind:     TransitionManualReset,
		Operator: operatorID,
		At:       now,
	})
	return nil
}

// tripRollbackLocked flips the gate into emergency rollback. Caller must hold
// the lock and have checked the flag is not already set.
func (g *Gate) tripRollbackLocked(lane string, now time.Time, v verdict) {
	g.rollbackTriggered = true
	g.rollbackAt = now

	g.logger.Error("emergency rollback triggered: critical block rate below safety floor",
		"lane", lane,
		"block_rate", v.stats.CriticalBlockRate,
		"critical_count", v.stats.Critical,
		"sample_count", v.stats.Total,
		"threshold", g.cfg.MinCriticalBlockRate,
		"window", g.cfg.RollbackWindow,
		"timestamp", now,
	)
	g.metrics.Increment(MetricRollbacks, map[string]string{"lane": lane})
	g.recordTransitionLocked(Transition{
		Kind:        TransitionRollback,
		Lane:        lane,
		BlockRate:   v.stats.CriticalBlockRate,
		SampleCount: v.stats.Total,
		Threshold:   g.cfg.MinCriticalBlockRate,
		At:          now,
	})
}

// denyLocked emits telemetry for a non-enforcing outcome and returns false.
func (g *Gate) denyLocked(lane, reason string, reqCtx map[string]any) bool {
	g.emitDecisionLocked(lane, reason, false)
	if len(reqCtx) > 0 {
		g.logger.Debug("enforcement denied",
			"lane", lane,
			"reason", reason,
			"request_context", reqCtx,
		)
	}
	return false
}

// emitDecisionLocked emits the one-per-call decision counter.
func (g *Gate) emitDecisionLocked(lane, reason string, enforced bool) {
	g.metrics.Increment(MetricDecisions, map[string]string{
		"lane":     lane,
		"reason":   reason,
		"enforced": strconv.FormatBool(enforced),
	})
}

// recordTransitionLocked forwards a transition to the audit sink, if any.
func (g *Gate) recordTransitionLocked(t Transition) {
	if g.audit != nil {
		g.audit.RecordTransition(t)
	}
}

// laneMode resolves a lane's configured mode. Unknown lanes get the
// conservative logging-only default rather than an error.
func (g *Gate) laneMode(lane string) Mode {
	if mode, ok := g.cfg.Lanes[lane]; ok {
		return mode
	}
	return ModeLoggingOnly
}

// windowFor returns the lane's decision window, creating it if needed.
// Caller must hold the lock.
func (g *Gate) windowFor(lane string) *decisionWindow {
	w, ok := g.windows[lane]
	if !ok {
		w = &decisionWindow{}
		g.windows[lane] = w
	}
	return w
}
