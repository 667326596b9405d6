// Package gate implements the runtime enforcement interlock that decides,
// per request lane, whether the external policy evaluator is actually
// enforced, and disables itself when enforcement stops catching dangerous
// outcomes.
//
// # Overview
//
// The Gate sits in front of a policy evaluator that runs behind a traffic
// split (a "candidate" lane next to a "control" lane). Request handlers ask
// ShouldEnforce before invoking the evaluator, report evaluator outcomes via
// RecordDecision, and report evaluator errors via RecordCircuitFailure. The
// Gate never calls the evaluator itself; it only gates access to it.
//
// Three independent safety mechanisms are composed, checked in order:
//
//  1. Kill switch: an out-of-band file sentinel that fails the gate closed
//     (enforcement off) within one call of being created.
//  2. Circuit breaker: per-lane failure counting with timed, lazily observed
//     recovery. Repeated evaluator errors fail the lane open (logging-only).
//  3. Rollback monitor: a sliding window over the monitored lane's decisions.
//     When the fraction of critical decisions that were actually blocked
//     drops below the configured floor, the Gate trips a sticky emergency
//     rollback that only an operator can clear.
//
// # Concurrency
//
// A single mutex guards all mutable state. Every public method acquires it
// for the duration of the call and never blocks on anything slower than a
// stat(2), so the Gate is safe to share across any number of request-handling
// goroutines without external synchronization.
//
// # Example
//
//	g, err := gate.New(gate.Config{
//	    Lanes: map[string]gate.Mode{
//	        "control":   gate.ModeEnforce,
//	        "candidate": gate.ModeEnforce,
//	    },
//	    MonitorLane:             "candidate",
//	    MinCriticalBlockRate:    0.80,
//	    RollbackWindow:          10 * time.Minute,
//	    MinSamplesForRollback:   20,
//	    CircuitFailureThreshold: 5,
//	    CircuitRecovery:         5 * time.Minute,
//	    KillSwitchPath:          "/var/run/callisto.disable",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if g.ShouldEnforce("candidate", nil) {
//	    verdict, err := evaluator.Evaluate(req)
//	    if err != nil {
//	        g.RecordCircuitFailure("candidate", err.Error())
//	    } else {
//	        g.RecordDecision("candidate", verdict.Action, verdict.Critical, verdict.Blocked)
//	    }
//	}
package gate
