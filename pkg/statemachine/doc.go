// Package statemachine provides a small, generic finite-state-machine.
//
// States and events are any comparable types, typically string-based
// constants. The machine handles transition lookup, optional Guard evaluation,
// Actions executed before the state changes, and Listeners notified after it.
//
// # Usage
//
//	type Status string
//	type Event string
//
//	m := statemachine.MustNew[Status, Event]("idle",
//	    statemachine.WithTransition[Status, Event]("idle", "busy", "request"),
//	    statemachine.WithTransition[Status, Event]("busy", "success", "resolve_ok"),
//	)
//
//	m.OnTransition(func(from, to Status, evt Event) {
//	    log.Printf("%s -> %s via %s", from, to, evt)
//	})
//
//	_ = m.Fire(ctx, "request", nil)
//
// # Error Handling
//
// Fire returns typed errors; use the predicates to branch on them:
//
//	if statemachine.IsNoTransitionAvailableError(err) { /* event not defined here */ }
//	if statemachine.IsTransitionRejectedError(err)   { /* a guard vetoed it */ }
//
// # Concurrency
//
// All methods are safe for concurrent use. Transitions are serialized and
// listeners for one transition finish before the next transition starts.
// Actions run under the state lock and must not call back into the machine;
// listeners must not call Fire.
package statemachine
