package gate

import "time"

// Mode defines how enforcement behaves for a lane.
type Mode string

const (
	// ModeDisabled turns the evaluator off entirely for the lane.
	ModeDisabled Mode = "disabled"

	// ModeLoggingOnly runs the evaluator for observation without enforcing
	// its verdicts. Unknown lanes resolve to this mode.
	ModeLoggingOnly Mode = "logging_only"

	// ModeEnforce applies the evaluator's verdicts to live traffic.
	ModeEnforce Mode = "enforce"
)

// Valid reports whether m is one of the defined enforcement modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDisabled, ModeLoggingOnly, ModeEnforce:
		return true
	}
	return false
}

// SafetyState is the gate-wide safety condition derived from circuit and
// rollback state.
type SafetyState string

const (
	// StateHealthy means no breaker has recorded failures and rollback is clear.
	StateHealthy SafetyState = "healthy"

	// StateDegraded means at least one lane has recorded evaluator failures
	// but no breaker is open.
	StateDegraded SafetyState = "degraded"

	// StateCircuitOpen means at least one lane's breaker is currently open.
	StateCircuitOpen SafetyState = "circuit_open"

	// StateEmergencyRollback means the rollback monitor tripped and has not
	// been manually reset.
	StateEmergencyRollback SafetyState = "emergency_rollback"
)

// Decision reasons emitted with every ShouldEnforce call. For mode-based
// outcomes the reason is the mode name itself.
const (
	ReasonEmergencyDisabled = "emergency_disabled"
	ReasonCircuitOpen       = "circuit_open"
	ReasonRollbackActive    = "rollback_active"
)

// DecisionRecord is one evaluator outcome as reported by the host.
// Records are immutable once appended and are evicted by age.
type DecisionRecord struct {
	Timestamp time.Time
	Action    string
	Critical  bool
	Blocked   bool
}

// WindowStats summarizes the decisions inside the strict rollback window for
// one lane.
type WindowStats struct {
	// Total is the number of decisions in the window.
	Total int

	// Critical is the number of decisions flagged high-severity.
	Critical int

	// Blocked is the number of critical decisions that resulted in a block.
	Blocked int

	// CriticalBlockRate is Blocked/Critical, or 0 when Critical is 0.
	CriticalBlockRate float64
}

// LaneStatus is the per-lane portion of a StatusSnapshot.
type LaneStatus struct {
	Mode            Mode
	CircuitOpen     bool
	CircuitFailures int
	Window          WindowStats
}

// StatusSnapshot is a read-only view of the gate. Building one never mutates
// circuit or rollback state, so status polling cannot itself trigger a
// recovery transition.
type StatusSnapshot struct {
	State             SafetyState
	RollbackTriggered bool
	GeneratedAt       time.Time
	Lanes             map[string]LaneStatus
}

// Transition describes a safety state transition handed to the audit
// collaborator. Rate, sample and threshold fields are only meaningful for
// rollback transitions.
type Transition struct {
	// Kind is one of TransitionCircuitOpen, TransitionRollback,
	// TransitionManualReset.
	Kind string

	Lane        string
	Operator    string
	BlockRate   float64
	SampleCount int
	Threshold   float64
	At          time.Time
}

// Transition kinds recorded to the audit sink.
const (
	TransitionCircuitOpen = "circuit_open"
	TransitionRollback    = "rollback_triggered"
	TransitionManualReset = "manual_reset"
)

// AuditSink receives safety state transitions for durable audit. The gate
// holds no history itself; it is a live interlock, not an audit trail.
type AuditSink interface {
	RecordTransition(t Transition)
}
