package identity

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/pushgate/pkg/logger"
)

type deviceKeyCtx struct{}

func WithContext(ctx context.Context, deviceKey string) context.Context {
	return context.WithValue(ctx, deviceKeyCtx{}, deviceKey)
}

// FromContext returns the device key stored by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(deviceKeyCtx{}).(string)
	return key, ok && key != ""
}

// Extractor is a logger.ContextExtractor for the device key.
func Extractor(ctx context.Context) (slog.Attr, bool) {
	if key, ok := FromContext(ctx); ok {
		return logger.DeviceKey(key), true
	}
	return slog.Attr{}, false
}
