package presenter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/version"
)

// Gate marks a platform that needs the app installed to the home screen before
// it can subscribe, with the OS version from which that install flow works.
type Gate struct {
	OS           device.OSName
	Minimum      version.Version
	EligibleText string
	UpgradeText  string
}

// DefaultGate is the iOS home screen requirement: web push works for installed
// apps from iOS 16.5.
func DefaultGate() Gate {
	return Gate{
		OS:           device.OSiOS,
		Minimum:      version.New(16, 5, 0),
		EligibleText: "Follow the steps below to install on iOS 16.5",
		UpgradeText:  "Upgrade your iOS to 16.5 and then follow the steps below to install",
	}
}

// Applies reports whether info is on the gated platform outside standalone mode.
func (g Gate) Applies(info device.Info) bool {
	return !info.Standalone && info.OSName == g.OS
}

// Caption picks the caption variant and its text for info.
func (g Gate) Caption(info device.Info) (Caption, string) {
	if version.Satisfies(info.OSVersion, g.Minimum) {
		return CaptionEligible, g.EligibleText
	}
	return CaptionUpgradeFirst, g.UpgradeText
}

type gateFile struct {
	Gates []gateRule `yaml:"gates"`
}

type gateRule struct {
	OS           string `yaml:"os"`
	Minimum      string `yaml:"minimum"`
	EligibleText string `yaml:"eligible_text"`
	UpgradeText  string `yaml:"upgrade_text"`
}

// ParseGates reads gate rules from YAML:
//
//	gates:
//	  - os: iOS
//	    minimum: "16.5"
//	    eligible_text: Follow the steps below to install on iOS 16.5
//	    upgrade_text: Upgrade your iOS to 16.5 and then follow the steps below to install
func ParseGates(data []byte) ([]Gate, error) {
	var f gateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGates, err)
	}

	gates := make([]Gate, 0, len(f.Gates))
	for i, r := range f.Gates {
		name, ok := parseOSName(r.OS)
		if !ok {
			return nil, fmt.Errorf("%w: gate %d: unknown os %q", ErrInvalidGates, i, r.OS)
		}
		if strings.TrimSpace(r.Minimum) == "" {
			return nil, fmt.Errorf("%w: gate %d: minimum version is required", ErrInvalidGates, i)
		}
		gates = append(gates, Gate{
			OS:           name,
			Minimum:      version.Parse(r.Minimum),
			EligibleText: r.EligibleText,
			UpgradeText:  r.UpgradeText,
		})
	}
	return gates, nil
}

// LoadGates reads gate rules from a YAML file.
func LoadGates(path string) ([]Gate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gates file: %w", err)
	}
	return ParseGates(data)
}

func parseOSName(s string) (device.OSName, bool) {
	for _, name := range []device.OSName{
		device.OSiOS, device.OSAndroid, device.OSWindows,
		device.OSMacOS, device.OSLinux, device.OSOther,
	} {
		if strings.EqualFold(s, string(name)) {
			return name, true
		}
	}
	return "", false
}
