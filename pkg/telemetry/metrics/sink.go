// Package metrics implements the gate's MetricsSink collaborator on top of
// Prometheus. Every metric the gate emits is pre-registered with a fixed
// label schema; the sink is a thin name-to-collector dispatch, so the gate
// itself never imports Prometheus.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/callisto/pkg/gate"
)

// Sink is a Prometheus-backed gate.MetricsSink. All collectors live on a
// private registry so tests and embedding hosts control exposition.
type Sink struct {
	registry *prometheus.Registry
	counters map[string]*counterEntry
	gauges   map[string]*gaugeEntry
	logger   *slog.Logger
}

type counterEntry struct {
	vec    *prometheus.CounterVec
	labels []string
}

type gaugeEntry struct {
	vec    *prometheus.GaugeVec
	labels []string
}

// NewSink creates a Sink with all gate metrics registered under the given
// namespace (default "callisto"). If registry is nil a private registry is
// created.
func NewSink(namespace string, registry *prometheus.Registry) *Sink {
	if namespace == "" {
		namespace = "callisto"
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Sink{
		registry: registry,
		counters: make(map[string]*counterEntry),
		gauges:   make(map[string]*gaugeEntry),
		logger:   slog.Default().With("component", "telemetry.metrics"),
	}

	s.counter(namespace, gate.MetricDecisions,
		"Enforcement decisions by lane, reason and outcome.",
		[]string{"lane", "reason", "enforced"})
	s.counter(namespace, gate.MetricCircuitOpened,
		"Circuit breaker closed-to-open transitions.",
		[]string{"lane"})
	s.counter(namespace, gate.MetricCircuitFailures,
		"Evaluator failures reported per lane.",
		[]string{"lane"})
	s.counter(namespace, gate.MetricRollbacks,
		"Emergency rollback trips.",
		[]string{"lane"})
	s.counter(namespace, gate.MetricResets,
		"Manual rollback resets.",
		[]string{"operator"})
	s.gauge(namespace, gate.MetricCriticalBlockRate,
		"Windowed critical-to-blocked rate for the monitored lane.",
		[]string{"lane"})

	return s
}

// Increment implements gate.MetricsSink. Unknown metric names are dropped
// with a debug log rather than registered on the fly: unbounded dynamic
// registration is a cardinality hazard.
func (s *Sink) Increment(name string, labels map[string]string) {
	entry, ok := s.counters[name]
	if !ok {
		s.logger.Debug("unknown counter", "name", name)
		return
	}
	entry.vec.WithLabelValues(entry.values(labels)...).Inc()
}

// SetGauge implements gate.MetricsSink.
func (s *Sink) SetGauge(name string, labels map[string]string, value float64) {
	entry, ok := s.gauges[name]
	if !ok {
		s.logger.Debug("unknown gauge", "name", name)
		return
	}
	entry.vec.WithLabelValues(entry.values(labels)...).Set(value)
}

// Registry returns the underlying registry, for mounting the /metrics
// handler or registering host metrics alongside the gate's.
func (s *Sink) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Sink) counter(namespace, name, help string, labels []string) {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	s.registry.MustRegister(vec)
	s.counters[name] = &counterEntry{vec: vec, labels: labels}
}

func (s *Sink) gauge(namespace, name, help string, labels []string) {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	s.registry.MustRegister(vec)
	s.gauges[name] = &gaugeEntry{vec: vec, labels: labels}
}

// values extracts label values in schema order; missing labels become "".
func (e *counterEntry) values(labels map[string]string) []string {
	return orderedValues(e.labels, labels)
}

func (e *gaugeEntry) values(labels map[string]string) []string {
	return orderedValues(e.labels, labels)
}

func orderedValues(schema []string, labels map[string]string) []string {
	out := make([]string, len(schema))
	for i, key := range schema {
		out[i] = labels[key]
	}
	return out
}
