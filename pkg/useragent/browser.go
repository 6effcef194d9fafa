package useragent

import (
	"regexp"
	"strings"
)

// Browser represents browser information
type Browser struct {
	Name    string
	Version string
}

// browserPattern defines how a browser is detected. Patterns are evaluated in
// slice order: Chromium forks and vendor browsers first, plain Chrome and
// Safari last because every fork also advertises them.
type browserPattern struct {
	name     string
	keywords []string // any of these must be present
	excludes []string
	regex    *regexp.Regexp
}

var browserPatterns = []browserPattern{
	{
		name:     BrowserEdge,
		keywords: []string{"edg/", "edge/", "edgios/", "edga/"},
		regex:    regexp.MustCompile(`(?:edge|edg|edgios|edga)/([\d.]+)`),
	},
	{
		name:     BrowserSamsung,
		keywords: []string{"samsungbrowser"},
		regex:    regexp.MustCompile(`samsungbrowser/([\d.]+)`),
	},
	{
		name:     BrowserOpera,
		keywords: []string{"opr/", "opera", "opt/"},
		regex:    regexp.MustCompile(`(?:opr|opera|opt)[/ ]([\d.]+)`),
	},
	{
		name:     BrowserBrave,
		keywords: []string{"brave"},
		regex:    regexp.MustCompile(`brave/([\d.]+)`),
	},
	{
		name:     BrowserFirefox,
		keywords: []string{"firefox/", "fxios/"},
		regex:    regexp.MustCompile(`(?:firefox|fxios)/([\d.]+)`),
	},
	{
		name:     BrowserChrome,
		keywords: []string{"chrome/", "crios/"},
		regex:    regexp.MustCompile(`(?:chrome|crios)/([\d.]+)`),
	},
	{
		name:     BrowserSafari,
		keywords: []string{"safari"},
		excludes: []string{"chrome", "chromium", "android"},
		regex:    regexp.MustCompile(`version/([\d.]+)`),
	},
}

// extractVersion returns the first capture group of regex, capped to a sane length.
func extractVersion(ua string, regex *regexp.Regexp) string {
	if regex == nil {
		return ""
	}
	matches := regex.FindStringSubmatch(ua)
	if len(matches) < 2 {
		return ""
	}
	version := matches[1]
	if len(version) > 20 {
		version = version[:20]
	}
	return version
}

func (p browserPattern) matches(ua string) bool {
	found := false
	for _, keyword := range p.keywords {
		if strings.Contains(ua, keyword) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, exclude := range p.excludes {
		if strings.Contains(ua, exclude) {
			return false
		}
	}
	return true
}

// ParseBrowser parses the browser information from a lower-cased user agent string
func ParseBrowser(lowerUA string) Browser {
	for _, pattern := range browserPatterns {
		if pattern.matches(lowerUA) {
			return Browser{
				Name:    pattern.name,
				Version: extractVersion(lowerUA, pattern.regex),
			}
		}
	}

	return Browser{Name: BrowserUnknown}
}
