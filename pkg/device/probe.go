package device

import (
	"sync"

	"github.com/dmitrymomot/pushgate/pkg/useragent"
	"github.com/dmitrymomot/pushgate/pkg/version"
)

// Detect turns raw signals into an Info snapshot. It never fails: unknown or
// unparseable signals degrade to OSUnknown, version 0.0.0 and not standalone.
func Detect(s Signals) Info {
	// Parse errors only describe degraded results; the value is always usable.
	ua, _ := useragent.Parse(s.UserAgent)

	name := osNameFrom(ua.OS())
	ver := version.Parse(ua.OSVersion())
	if name == OSUnknown {
		ver = version.Version{}
	}

	return Info{
		OSName:         name,
		OSVersion:      ver,
		Standalone:     isStandalone(s),
		Browser:        ua.BrowserName(),
		BrowserVersion: ua.BrowserVer(),
		DeviceType:     ua.DeviceType(),
		PushAPI:        pushAPIFrom(s.PushAPI),
		Identifier:     ua.ShortIdentifier(),
	}
}

// Probe detects the device once and hands out the cached snapshot afterwards.
type Probe struct {
	signals Signals
	once    sync.Once
	info    Info
}

// NewProbe creates a probe over fixed signals.
func NewProbe(s Signals) *Probe {
	return &Probe{signals: s}
}

// Detect returns the session snapshot. The first call does the work; every
// later call, concurrent or not, returns an equal value.
func (p *Probe) Detect() Info {
	p.once.Do(func() {
		p.info = Detect(p.signals)
	})
	return p.info
}
