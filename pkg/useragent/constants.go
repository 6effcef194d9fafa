package useragent

// Device types represent the category of device that made the request
const (
	// DeviceTypeBot identifies automated crawlers and link previewers
	DeviceTypeBot = "bot"

	// DeviceTypeMobile identifies smartphones
	DeviceTypeMobile = "mobile"

	// DeviceTypeTablet identifies tablet devices (iPad, Android tablets, etc.)
	DeviceTypeTablet = "tablet"

	// DeviceTypeDesktop identifies desktop computers and laptops
	DeviceTypeDesktop = "desktop"

	// DeviceTypeUnknown is used when the device type cannot be determined
	DeviceTypeUnknown = "unknown"
)

// Browser name identifiers
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOpera   = "opera"
	BrowserSamsung = "samsung"
	BrowserBrave   = "brave"

	// BrowserUnknown is used when the browser cannot be determined
	BrowserUnknown = "unknown"
)

// Operating system identifiers
const (
	// OSWindows identifies Microsoft Windows
	OSWindows = "windows"

	// OSMacOS identifies Apple macOS
	OSMacOS = "macos"

	// OSiOS identifies Apple iOS and iPadOS when the UA still reports an iPad
	OSiOS = "ios"

	// OSAndroid identifies Google Android and Android forks
	OSAndroid = "android"

	// OSLinux identifies desktop Linux distributions
	OSLinux = "linux"

	// OSChromeOS identifies Google ChromeOS
	OSChromeOS = "chromeos"

	// OSUnknown is used when the operating system cannot be determined
	OSUnknown = "unknown"
)
