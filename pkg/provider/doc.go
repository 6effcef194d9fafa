// Package provider talks to the push notification provider that actually
// stores subscriptions. pushgate only asks it to subscribe a user id and looks
// at whether that worked.
//
//	sub, err := provider.NewHTTPSubscriber(cfg, provider.WithLogger(log))
//	err = sub.Subscribe(ctx, userID)
//	if perr, ok := err.(*provider.Error); ok {
//	    // perr.Status, perr.Message
//	}
package provider
