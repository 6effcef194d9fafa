package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups the non-nil errors under "errors". All-nil input yields an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the push user identifier under "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// RequestID records the request identifier under "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Attempt records a subscription attempt sequence number.
func Attempt(n uint64) slog.Attr {
	return slog.Uint64("attempt", n)
}

// Status records a subscription status.
func Status(s string) slog.Attr {
	return slog.String("status", s)
}

// Transition records a state change as "from->to".
func Transition(from, to string) slog.Attr {
	return slog.String("transition", from+"->"+to)
}

// Device records a short device description such as "Safari/16.4 (iOS 16.4, mobile)".
func Device(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("device", id)
}

// DeviceKey records the browser's device key under "device_key".
func DeviceKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("device_key", key)
}

// Directive records the render directive kind.
func Directive(kind string) slog.Attr {
	return slog.String("directive", kind)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Handler(name string) slog.Attr {
	return slog.String("handler", name)
}
