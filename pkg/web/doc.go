// Package web serves the onboarding flow over HTTP.
//
// Every browser carries a signed device key cookie (see package identity) and
// gets one onboarding session per key from an onboarding.Registry. Each page
// load probes the device again through /directive, and a session built from a
// different snapshot is replaced unless an attempt is in flight. The page
// is server rendered with templ components; the directive panel is kept up
// to date with Datastar element patches streamed over SSE. The same endpoints
// answer JSON for clients that do not speak Datastar.
//
//	srv, err := web.New(registry, store, subscriber, cookies,
//		web.WithLogger(log),
//		web.WithSelector(presenter.NewSelector(gates...)),
//		web.WithPublicURL("https://push.example.com/"),
//	)
//	httpserver.New().Run(ctx, srv.Routes())
package web
