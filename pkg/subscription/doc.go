// Package subscription holds the lifecycle of a push subscription attempt:
// idle, busy, success, error and the absorbing unsupported state.
//
// Every request creates a numbered Attempt. The outcome of an external call is
// fed back with Resolve together with the attempt it belongs to; results of
// superseded attempts are dropped, so a slow response can never overwrite a
// newer one.
//
//	m := subscription.NewMachine()
//	m.OnChange(func(st subscription.State) { render(st) })
//
//	attempt, ok := m.Request()
//	if ok {
//	    go func() { m.Resolve(attempt, provider.Subscribe(ctx, userID)) }()
//	}
//
// Events that make no sense for the current state (a second result, a request
// on an unsupported platform) are ignored rather than reported as errors.
package subscription
