package useragent

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UserAgent contains the parsed information from a user agent string
type UserAgent struct {
	userAgent   string
	deviceType  string
	os          string
	osVersion   string
	browserName string
	browserVer  string
}

// String returns the raw user agent string
func (ua UserAgent) String() string { return ua.userAgent }

// DeviceType returns the device type (mobile, desktop, tablet, bot, unknown)
func (ua UserAgent) DeviceType() string { return ua.deviceType }

// OS returns the operating system identifier
func (ua UserAgent) OS() string { return ua.os }

// OSVersion returns the dotted operating system version, or an empty string
func (ua UserAgent) OSVersion() string { return ua.osVersion }

// BrowserName returns the browser identifier
func (ua UserAgent) BrowserName() string { return ua.browserName }

// BrowserVer returns the browser version
func (ua UserAgent) BrowserVer() string { return ua.browserVer }

// BrowserInfo returns the browser name and version
func (ua UserAgent) BrowserInfo() Browser {
	return Browser{Name: ua.browserName, Version: ua.browserVer}
}

func (ua UserAgent) IsBot() bool    { return ua.deviceType == DeviceTypeBot }
func (ua UserAgent) IsMobile() bool { return ua.deviceType == DeviceTypeMobile }
func (ua UserAgent) IsTablet() bool { return ua.deviceType == DeviceTypeTablet }

// IsUnknown returns true if nothing useful could be extracted
func (ua UserAgent) IsUnknown() bool {
	return (ua.os == "" || ua.os == OSUnknown) &&
		(ua.browserName == "" || ua.browserName == BrowserUnknown)
}

// title capitalizes a name. Casers are stateful, so one is created per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// FormatOSName returns the display name of an OS identifier
func FormatOSName(os string) string {
	switch os {
	case "", OSUnknown:
		return "Unknown OS"
	case OSiOS:
		return "iOS"
	case OSMacOS:
		return "macOS"
	case OSChromeOS:
		return "ChromeOS"
	default:
		return title(os)
	}
}

// FormatBrowserName returns the display name of a browser identifier
func FormatBrowserName(name string) string {
	if name == "" || name == BrowserUnknown {
		return "Unknown"
	}
	return title(name)
}

// ShortIdentifier returns a short human-readable identifier for diagnostics.
// Format: Browser/Version (OS Version, deviceType)
func (ua UserAgent) ShortIdentifier() string {
	if ua.IsBot() {
		return "Bot"
	}
	if ua.IsUnknown() {
		return "Unknown device"
	}

	browserVer := ua.browserVer
	if browserVer == "" {
		browserVer = "?"
	}

	osPart := FormatOSName(ua.os)
	if ua.osVersion != "" {
		osPart += " " + ua.osVersion
	}

	deviceType := ua.deviceType
	if deviceType == "" {
		deviceType = DeviceTypeUnknown
	}

	return fmt.Sprintf("%s/%s (%s, %s)", FormatBrowserName(ua.browserName), browserVer, osPart, deviceType)
}

// Parse parses a user agent string. It always returns a usable UserAgent;
// the error only describes why the result is degraded.
func Parse(ua string) (UserAgent, error) {
	if strings.TrimSpace(ua) == "" {
		return New("", DeviceTypeUnknown, OSUnknown, "", BrowserUnknown, ""), ErrEmptyUserAgent
	}

	lowerUA := strings.ToLower(ua)

	deviceType := ParseDeviceType(lowerUA)
	os := ParseOS(lowerUA)
	osVersion := ParseOSVersion(lowerUA, os)
	browser := ParseBrowser(lowerUA)

	result := New(ua, deviceType, os, osVersion, browser.Name, browser.Version)

	if os == OSUnknown && browser.Name == BrowserUnknown && deviceType == DeviceTypeUnknown {
		return result, ErrMalformedUserAgent
	}
	if deviceType == DeviceTypeUnknown {
		return result, ErrUnknownDevice
	}

	return result, nil
}

// New creates a new UserAgent with the provided parameters
func New(ua, deviceType, os, osVersion, browserName, browserVer string) UserAgent {
	return UserAgent{
		userAgent:   ua,
		deviceType:  deviceType,
		os:          os,
		osVersion:   osVersion,
		browserName: browserName,
		browserVer:  browserVer,
	}
}
