package gate

import "time"

// rollbackMonitor evaluates the monitored lane's strict window against the
// safety floor. It is pure computation over a decisionWindow; the Gate owns
// the sticky flag the verdict feeds.
type rollbackMonitor struct {
	minRate    float64
	window     time.Duration
	minSamples int
}

// verdict is one rollback evaluation, kept for logging and audit context.
type verdict struct {
	stats   WindowStats
	tripped bool
}

// evaluate filters w to the strict window ending at now and decides whether
// the rollback condition holds. Two guards precede the rate check:
//
//   - fewer than minSamples total decisions: insufficient data, never trip on
//     sparse traffic;
//   - zero critical decisions: no denominator, and the absence of critical
//     cases is not itself a violation.
func (m *rollbackMonitor) evaluate(w *decisionWindow, now time.Time) verdict {
	stats := w.stats(now.Add(-m.window))

	if stats.Total < m.minSamples {
		return verdict{stats: stats}
	}
	if stats.Critical == 0 {
		return verdict{stats: stats}
	}
	return verdict{stats: stats, tripped: stats.CriticalBlockRate < m.minRate}
}
