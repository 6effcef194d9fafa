// Package logger builds *slog.Logger values for pushgate.
//
// New takes functional options for format, level, static attributes and
// context extractors. The resulting handler is wrapped in LogHandlerDecorator,
// which pulls request-scoped values such as the request id or the push user id
// out of the context on every call.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(requestid.Extractor, identity.Extractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.DebugContext(ctx, "subscription state changed",
//	    logger.Attempt(3),
//	    logger.Transition("busy", "success"),
//	)
//
// Attribute helpers (Error, UserID, Attempt, Device, ...) keep key names
// consistent across packages. Helpers that take optional values return an
// empty slog.Attr for nil or empty input, which slog drops.
package logger
