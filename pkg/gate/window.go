package gate

import "time"

// evictionGrace keeps records slightly beyond the rollback window so the
// strict-window filter always operates on a superset of what it needs.
const evictionGrace = 5 * time.Minute

// decisionWindow is a time-ordered log of recent decision outcomes for one
// lane. Records append at the tail; eviction advances a head index from the
// oldest end, so the per-call cost stays amortized O(1) instead of rescanning
// the whole window on every RecordDecision.
//
// decisionWindow has no lock of its own: the owning Gate's mutex guards it.
type decisionWindow struct {
	records []DecisionRecord
	head    int
}

// append adds a record at the tail. Timestamps are expected to be
// non-decreasing since all appends happen under the gate lock with the gate
// clock.
func (w *decisionWindow) append(rec DecisionRecord) {
	w.records = append(w.records, rec)
}

// evictOlderThan drops records with timestamps before cutoff. The backing
// slice is compacted once the dead prefix dominates, keeping memory bounded
// without copying on every call.
func (w *decisionWindow) evictOlderThan(cutoff time.Time) {
	for w.head < len(w.records) && w.records[w.head].Timestamp.Before(cutoff) {
		w.head++
	}
	if w.head > len(w.records)/2 && w.head > 0 {
		w.records = append(w.records[:0], w.records[w.head:]...)
		w.head = 0
	}
}

// stats summarizes records at or after cutoff: the strict rollback window.
func (w *decisionWindow) stats(cutoff time.Time) WindowStats {
	var s WindowStats
	for _, rec := range w.records[w.head:] {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		s.Total++
		if rec.Critical {
			s.Critical++
			if rec.Blocked {
				s.Blocked++
			}
		}
	}
	if s.Critical > 0 {
		s.CriticalBlockRate = float64(s.Blocked) / float64(s.Critical)
	}
	return s
}

// size returns the number of live records, including any older than the
// strict window that the grace period has not yet evicted.
func (w *decisionWindow) size() int {
	return len(w.records) - w.head
}

// clear drops all records.
func (w *decisionWindow) clear() {
	w.records = nil
	w.head = 0
}
