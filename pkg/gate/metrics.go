package gate

// MetricsSink receives counters and gauges for every branch the gate takes.
// Implementations must be safe for concurrent use and must not block: the
// gate calls the sink while holding its lock.
//
// The Prometheus-backed implementation lives in pkg/telemetry/metrics; a
// NopSink is substitutable with zero change to gate decisions.
type MetricsSink interface {
	// Increment adds one to the named counter.
	Increment(name string, labels map[string]string)

	// SetGauge sets the named gauge to value.
	SetGauge(name string, labels map[string]string, value float64)
}

// Metric names emitted by the gate. Sinks key on these.
const (
	// MetricDecisions counts ShouldEnforce outcomes.
	// Labels: lane, reason, enforced.
	MetricDecisions = "gate_decisions_total"

	// MetricCircuitOpened counts closed-to-open breaker transitions.
	// Labels: lane.
	MetricCircuitOpened = "gate_circuit_opened_total"

	// MetricCircuitFailures counts evaluator failures reported per lane.
	// Labels: lane.
	MetricCircuitFailures = "gate_circuit_failures_total"

	// MetricRollbacks counts rollback monitor trips. Labels: lane.
	MetricRollbacks = "gate_rollbacks_total"

	// MetricResets counts manual rollback resets. Labels: operator.
	MetricResets = "gate_resets_total"

	// MetricCriticalBlockRate is the monitored lane's windowed
	// critical-to-blocked rate. Labels: lane.
	MetricCriticalBlockRate = "gate_critical_block_rate"
)

// NopSink is a MetricsSink that discards everything.
type NopSink struct{}

// Increment implements MetricsSink.
func (NopSink) Increment(string, map[string]string) {}

// SetGauge implements MetricsSink.
func (NopSink) SetGauge(string, map[string]string, float64) {}
