// Package onboarding ties the decision engine together. An Orchestrator owns
// one session: the device snapshot, the subscription machine, the cached user
// id and the collaborators that do the actual work.
//
//	o := onboarding.New(info, identity.Static(userID), provider,
//	    onboarding.WithSelector(presenter.NewSelector(gates...)),
//	    onboarding.WithLogger(log),
//	)
//	defer o.Close()
//
//	updates := o.Updates(ctx)
//	o.RequestSubscription(ctx)
//	for msg := range updates.Receive(ctx) {
//	    render(msg.Data)
//	}
//
// RequestSubscription never blocks on the provider and never retries on its
// own. Collaborator failures end up as an error state with a message for the
// user, not as returned errors.
//
// Registry holds sessions for the HTTP surface, keyed by user id, and evicts
// idle ones.
package onboarding
