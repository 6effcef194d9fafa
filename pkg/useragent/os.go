package useragent

import (
	"regexp"
	"strings"
)

// OS detection keyword sets
var (
	windowsKeywords  = newKeywordSet("windows")
	iOSKeywords      = newKeywordSet("iphone", "ipad", "ipod")
	macOSKeywords    = newKeywordSet("macintosh", "mac os x")
	androidKeywords  = newKeywordSet("android", "harmonyos", "kindle", "silk")
	chromeOSKeywords = newKeywordSet("cros", "chromeos")
	linuxKeywords    = newKeywordSet("linux", "ubuntu", "debian", "fedora", "x11")
)

// OS version patterns. Apple platforms separate components with underscores.
var osVersionPatterns = map[string]*regexp.Regexp{
	OSiOS:      regexp.MustCompile(`(?:iphone os|cpu os|ipod os) (\d+(?:[_.]\d+)*)`),
	OSMacOS:    regexp.MustCompile(`mac os x (\d+(?:[_.]\d+)*)`),
	OSAndroid:  regexp.MustCompile(`android (\d+(?:\.\d+)*)`),
	OSWindows:  regexp.MustCompile(`windows nt (\d+(?:\.\d+)*)`),
	OSChromeOS: regexp.MustCompile(`cros [a-z0-9_]+ (\d+(?:\.\d+)*)`),
}

// ParseOS identifies operating systems using keyword matching.
// iOS must be checked before macOS: every iOS UA carries "like Mac OS X".
// Android is checked before Linux for the same reason.
func ParseOS(lowerUA string) string {
	if lowerUA == "" {
		return OSUnknown
	}

	if windowsKeywords.contains(lowerUA) {
		return OSWindows
	}

	if iOSKeywords.contains(lowerUA) {
		return OSiOS
	}

	if macOSKeywords.contains(lowerUA) {
		return OSMacOS
	}

	if androidKeywords.contains(lowerUA) {
		return OSAndroid
	}

	if chromeOSKeywords.contains(lowerUA) {
		return OSChromeOS
	}

	if linuxKeywords.contains(lowerUA) {
		return OSLinux
	}

	return OSUnknown
}

// ParseOSVersion extracts the dotted OS version for the given OS identifier.
// Returns an empty string when the UA carries no version for that OS.
func ParseOSVersion(lowerUA, os string) string {
	pattern, ok := osVersionPatterns[os]
	if !ok {
		return ""
	}
	version := extractVersion(lowerUA, pattern)
	return strings.ReplaceAll(version, "_", ".")
}
