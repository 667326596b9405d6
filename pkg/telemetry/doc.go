// Package telemetry provides observability for the Callisto enforcement
// interlock.
//
// # Components
//
//   - metrics: a Prometheus-backed implementation of the gate's MetricsSink
//     collaborator interface, plus the /metrics HTTP handler
//
// Logging is plain log/slog; every component tags its logger with a
// "component" attribute and every safety state transition carries enough
// context (lane, computed rate, sample count, threshold, timestamp) to
// reconstruct why enforcement was off at a given time.
package telemetry
