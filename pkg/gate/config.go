package gate

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/callisto/pkg/killswitch"
)

// Config contains the immutable configuration for a Gate. It is validated
// once at construction and never mutated afterwards; out-of-range thresholds
// are the only condition the gate treats as a hard failure.
type Config struct {
	// Lanes maps lane names to their configured enforcement mode. Lanes not
	// present here resolve to ModeLoggingOnly at call time.
	Lanes map[string]Mode

	// MonitorLane is the lane whose decisions feed the rollback monitor
	// (typically the candidate side of the traffic split). Decisions on
	// other lanes are windowed for status reporting but never trip rollback.
	MonitorLane string

	// MinCriticalBlockRate is the safety floor in [0,1]: when the windowed
	// fraction of critical decisions that were blocked drops below it,
	// rollback trips.
	MinCriticalBlockRate float64

	// RollbackWindow is the strict observation window for the rollback
	// monitor. Must be positive.
	RollbackWindow time.Duration

	// MinSamplesForRollback is the minimum number of decisions in the strict
	// window before the monitor will evaluate at all. Sparse traffic never
	// trips rollback, even at a 0% block rate. Must be >= 1.
	MinSamplesForRollback int

	// CircuitFailureThreshold is the per-lane evaluator failure count that
	// opens the breaker. Must be >= 1.
	CircuitFailureThreshold int

	// CircuitRecovery is how long an opened breaker stays open. Recovery is
	// observed lazily on the next ShouldEnforce call, not by a timer.
	// Must be >= 0.
	CircuitRecovery time.Duration

	// KillSwitchPath is the sentinel file whose existence disables
	// enforcement everywhere. Ignored when KillSwitch is set. Empty with a
	// nil KillSwitch means no kill switch.
	KillSwitchPath string

	// KillSwitch overrides the default stat-per-call file switch, e.g. with
	// a killswitch.Watched when per-call stat contention is measurable.
	KillSwitch killswitch.Switch

	// Metrics receives one emission per ShouldEnforce call plus transition
	// counters. Nil means NopSink.
	Metrics MetricsSink

	// Audit receives state transitions. Nil means transitions are only
	// logged.
	Audit AuditSink

	// Logger defaults to slog.Default() with a component attribute.
	Logger *slog.Logger

	// Clock overrides time.Now, for tests driving a simulated clock.
	Clock func() time.Time
}

// Validate checks all threshold fields. It aggregates every violation into a
// single error so misconfiguration is reported completely, not one field at
// a time.
func (c *Config) Validate() error {
	var problems []string

	if c.MinCriticalBlockRate < 0 || c.MinCriticalBlockRate > 1 {
		problems = append(problems, fmt.Sprintf("min_critical_block_rate must be in [0,1], got %v", c.MinCriticalBlockRate))
	}
	if c.RollbackWindow <= 0 {
		problems = append(problems, fmt.Sprintf("rollback_window must be positive, got %v", c.RollbackWindow))
	}
	if c.MinSamplesForRollback < 1 {
		problems = append(problems, fmt.Sprintf("min_samples_for_rollback must be >= 1, got %d", c.MinSamplesForRollback))
	}
	if c.CircuitFailureThreshold < 1 {
		problems = append(problems, fmt.Sprintf("circuit_failure_threshold must be >= 1, got %d", c.CircuitFailureThreshold))
	}
	if c.CircuitRecovery < 0 {
		problems = append(problems, fmt.Sprintf("circuit_recovery must be >= 0, got %v", c.CircuitRecovery))
	}
	for lane, mode := range c.Lanes {
		if !mode.Valid() {
			problems = append(problems, fmt.Sprintf("lane %q has unknown mode %q", lane, mode))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid gate configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
