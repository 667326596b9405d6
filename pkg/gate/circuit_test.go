package gate

import (
	"testing"
	"time"
)

func TestCircuitState_OpensAtThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cs := &circuitState{}

	for i := 0; i < 4; i++ {
		if opened := cs.recordFailure(now, 5, time.Minute); opened {
			t.Fatalf("Expected no open at failure %d", i+1)
		}
		if cs.isOpen(now) {
			t.Fatalf("Expected closed breaker at failure %d", i+1)
		}
	}

	if opened := cs.recordFailure(now, 5, time.Minute); !opened {
		t.Error("Expected closed-to-open transition at threshold")
	}
	if !cs.isOpen(now) {
		t.Error("Expected open breaker at threshold")
	}
}

func TestCircuitState_FurtherFailuresReArmWithoutReopening(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cs := &circuitState{}
	for i := 0; i < 5; i++ {
		cs.recordFailure(now, 5, time.Minute)
	}

	later := now.Add(30 * time.Second)
	if opened := cs.recordFailure(later, 5, time.Minute); opened {
		t.Error("Expected no second open transition while already open")
	}
	// The open period is re-armed from the latest failure.
	if !cs.isOpen(later.Add(45 * time.Second)) {
		t.Error("Expected breaker still open 45s after the re-arming failure")
	}
}

func TestCircuitState_RecoverIfElapsed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cs := &circuitState{}
	for i := 0; i < 5; i++ {
		cs.recordFailure(now, 5, time.Minute)
	}

	if cs.recoverIfElapsed(now.Add(59 * time.Second)) {
		t.Error("Expected no recovery before the open period elapses")
	}
	if !cs.recoverIfElapsed(now.Add(61 * time.Second)) {
		t.Error("Expected recovery after the open period elapses")
	}
	if cs.failures != 0 {
		t.Errorf("Expected failure counter reset, got %d", cs.failures)
	}
	if cs.isOpen(now.Add(61 * time.Second)) {
		t.Error("Expected closed breaker after recovery")
	}

	// Idempotent: a second call reports no transition.
	if cs.recoverIfElapsed(now.Add(62 * time.Second)) {
		t.Error("Expected no transition on repeated recovery")
	}
}

func TestCircuitState_RecoverOnClosedBreakerIsNoOp(t *testing.T) {
	cs := &circuitState{failures: 3}

	if cs.recoverIfElapsed(time.Now()) {
		t.Error("Expected no recovery on a never-opened breaker")
	}
	if cs.failures != 3 {
		t.Errorf("Expected counter untouched, got %d", cs.failures)
	}
}

func TestCircuitState_ZeroRecoveryOpensAndImmediatelyRecovers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cs := &circuitState{}
	if opened := cs.recordFailure(now, 1, 0); !opened {
		t.Error("Expected open transition at threshold 1")
	}
	// openUntil == now: not open, and recovery fires on the same instant.
	if cs.isOpen(now) {
		t.Error("Expected zero-duration open period to read closed")
	}
	if !cs.recoverIfElapsed(now) {
		t.Error("Expected immediate recovery with zero recovery period")
	}
}

func TestCircuitRegistry_GetCreatesPeekDoesNot(t *testing.T) {
	r := newCircuitRegistry()

	if r.peek("a") != nil {
		t.Error("Expected peek on unknown lane to return nil")
	}

	cs := r.get("a")
	if cs == nil {
		t.Fatal("Expected get to create state")
	}
	if r.peek("a") != cs {
		t.Error("Expected peek to return the same state as get")
	}
	if r.get("a") != cs {
		t.Error("Expected get to be stable across calls")
	}
}
