// Package httpserver runs an http.Handler with graceful shutdown and structured
// logging.
//
// Run blocks until its context is done (wire it to signal.NotifyContext in
// main) or Shutdown is called. Shutdown first cancels the base context shared
// by all requests, so open SSE streams wind down, then waits for in-flight
// requests and finally runs the hooks registered with WithShutdownHook.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook("sessions", func(context.Context) error { return registry.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness and readiness probes as JSON.
//
// Listen errors are wrapped with ErrStart, shutdown errors with ErrShutdown.
package httpserver
