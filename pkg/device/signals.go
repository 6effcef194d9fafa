package device

import (
	"net/http"
	"strings"
)

// Header and query names the client page uses to report its runtime.
const (
	HeaderDisplayMode         = "X-Display-Mode"
	HeaderNavigatorStandalone = "X-Navigator-Standalone"
	HeaderPushAPI             = "X-Push-API"

	QueryDisplayMode         = "display_mode"
	QueryNavigatorStandalone = "standalone"
	QueryPushAPI             = "push_api"
)

// Signals are the raw environment readings the probe consumes.
type Signals struct {
	// UserAgent is the raw User-Agent string.
	UserAgent string
	// DisplayMode is the matched CSS display-mode media feature:
	// "browser", "standalone", "fullscreen" or "minimal-ui".
	DisplayMode string
	// NavigatorStandalone is Safari's legacy navigator.standalone flag.
	NavigatorStandalone string
	// PushAPI is "true" when PushManager and a service worker are available.
	PushAPI string
}

// SignalsFromRequest collects signals from a request. Headers win over query
// parameters; missing values stay empty.
func SignalsFromRequest(r *http.Request) Signals {
	q := r.URL.Query()
	pick := func(header, query string) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
		return strings.TrimSpace(q.Get(query))
	}

	return Signals{
		UserAgent:           r.UserAgent(),
		DisplayMode:         pick(HeaderDisplayMode, QueryDisplayMode),
		NavigatorStandalone: pick(HeaderNavigatorStandalone, QueryNavigatorStandalone),
		PushAPI:             pick(HeaderPushAPI, QueryPushAPI),
	}
}

func isStandalone(s Signals) bool {
	switch strings.ToLower(s.DisplayMode) {
	case "standalone", "fullscreen", "minimal-ui":
		return true
	}
	return parseFlag(s.NavigatorStandalone)
}

func pushAPIFrom(raw string) PushAPI {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PushAPIUnknown
	case "1", "true", "yes", "available":
		return PushAPIAvailable
	case "0", "false", "no", "missing":
		return PushAPIMissing
	default:
		return PushAPIUnknown
	}
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
