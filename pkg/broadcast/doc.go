// Package broadcast fans typed messages out to many subscribers.
//
//	b := broadcast.NewMemoryBroadcaster[presenter.Directive](4)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	_ = b.Broadcast(ctx, broadcast.Message[presenter.Directive]{Data: d})
//
//	for msg := range sub.Receive(ctx) {
//	    render(msg.Data)
//	}
//
// Subscriptions end when their context is canceled, when Close is called on
// them, or when the broadcaster closes. Broadcast never blocks: a subscriber
// whose buffer is full loses its oldest message, so it always sees the latest.
package broadcast
