package device

import (
	"github.com/dmitrymomot/pushgate/pkg/useragent"
	"github.com/dmitrymomot/pushgate/pkg/version"
)

// OSName is the operating system family tag.
type OSName string

const (
	OSiOS     OSName = "iOS"
	OSAndroid OSName = "Android"
	OSWindows OSName = "Windows"
	OSMacOS   OSName = "macOS"
	OSLinux   OSName = "Linux"
	OSOther   OSName = "Other"
	OSUnknown OSName = "Unknown"
)

// PushAPI reports whether the client said the Push API exists in its runtime.
type PushAPI string

const (
	PushAPIUnknown   PushAPI = "unknown"
	PushAPIAvailable PushAPI = "available"
	PushAPIMissing   PushAPI = "missing"
)

// Info is an immutable snapshot of the device. Build it with Detect; the zero
// value is not meaningful.
type Info struct {
	OSName     OSName          `json:"os_name"`
	OSVersion  version.Version `json:"os_version"`
	Standalone bool            `json:"standalone"`

	// Diagnostics only; the decision engine does not branch on these.
	Browser        string  `json:"browser"`
	BrowserVersion string  `json:"browser_version"`
	DeviceType     string  `json:"device_type"`
	PushAPI        PushAPI `json:"push_api"`
	Identifier     string  `json:"identifier"`
}

// DisplayOS returns the OS name with its version, e.g. "iOS 16.4.0".
func (i Info) DisplayOS() string {
	if i.OSName == OSUnknown || i.OSVersion.IsZero() {
		return string(i.OSName)
	}
	return string(i.OSName) + " " + i.OSVersion.String()
}

// DisplayBrowser returns the browser name with its version.
func (i Info) DisplayBrowser() string {
	name := useragent.FormatBrowserName(i.Browser)
	if i.BrowserVersion == "" {
		return name
	}
	return name + " " + i.BrowserVersion
}

func osNameFrom(os string) OSName {
	switch os {
	case useragent.OSiOS:
		return OSiOS
	case useragent.OSAndroid:
		return OSAndroid
	case useragent.OSWindows:
		return OSWindows
	case useragent.OSMacOS:
		return OSMacOS
	case useragent.OSLinux:
		return OSLinux
	case "", useragent.OSUnknown:
		return OSUnknown
	default:
		return OSOther
	}
}
