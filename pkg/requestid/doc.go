// Package requestid tags every HTTP request with a correlation id.
//
// Middleware keeps a valid client supplied X-Request-ID header or generates a
// UUID, puts it in the context and echoes it back. Extractor plugs the id into
// pkg/logger so every record logged with the request context carries it.
//
//	r.Use(requestid.Middleware)
//	log := logger.New(logger.WithContextExtractors(requestid.Extractor))
package requestid
