package gate

import "time"

// circuitState holds one lane's breaker: a failure counter and, once the
// threshold is crossed, the time until which the breaker stays open.
//
// The breaker is open iff openUntil is set and now is before it. There is no
// background recovery timer; the first caller to observe an elapsed open
// period flips the breaker closed and zeroes the counter.
//
// circuitState has no lock of its own: the owning Gate's mutex guards it.
type circuitState struct {
	failures  int
	openUntil time.Time
}

// isOpen reports whether the breaker is open at now. Read-only, so status
// snapshots can use it without triggering recovery.
func (cs *circuitState) isOpen(now time.Time) bool {
	return !cs.openUntil.IsZero() && now.Before(cs.openUntil)
}

// recoverIfElapsed closes the breaker when its open period has passed.
// Returns true when a transition actually happened.
func (cs *circuitState) recoverIfElapsed(now time.Time) bool {
	if cs.openUntil.IsZero() || now.Before(cs.openUntil) {
		return false
	}
	cs.failures = 0
	cs.openUntil = time.Time{}
	return true
}

// recordFailure increments the counter and (re)arms the open period once the
// threshold is reached. Returns true only on the closed-to-open transition.
func (cs *circuitState) recordFailure(now time.Time, threshold int, recovery time.Duration) bool {
	cs.failures++
	if cs.failures < threshold {
		return false
	}
	wasOpen := cs.isOpen(now)
	cs.openUntil = now.Add(recovery)
	return !wasOpen
}

// circuitRegistry keys breaker state by lane name. Lanes materialize on first
// failure; ShouldEnforce never creates breaker state for a clean lane.
type circuitRegistry struct {
	lanes map[string]*circuitState
}

func newCircuitRegistry() *circuitRegistry {
	return &circuitRegistry{lanes: make(map[string]*circuitState)}
}

// get returns the lane's breaker, creating it if needed.
func (r *circuitRegistry) get(lane string) *circuitState {
	cs, ok := r.lanes[lane]
	if !ok {
		cs = &circuitState{}
		r.lanes[lane] = cs
	}
	return cs
}

// peek returns the lane's breaker without creating one.
func (r *circuitRegistry) peek(lane string) *circuitState {
	return r.lanes[lane]
}
