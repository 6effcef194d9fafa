package presenter

import "github.com/dmitrymomot/pushgate/pkg/device"

// Kind is the closed set of render outcomes.
type Kind string

const (
	KindLoading             Kind = "loading"
	KindInstallInstructions Kind = "install_instructions"
	KindSuccess             Kind = "success"
	KindErrorDiagnostics    Kind = "error_diagnostics"
	KindNothing             Kind = "nothing"
)

func (k Kind) String() string { return string(k) }

// Caption selects the install instructions variant.
type Caption string

const (
	// CaptionEligible: the OS already meets the gate's minimum version.
	CaptionEligible Caption = "eligible"
	// CaptionUpgradeFirst: the user must upgrade the OS before installing.
	CaptionUpgradeFirst Caption = "upgrade_first"
)

// Directive tells a renderer what to show. It is recomputed on every change
// and never stored.
type Directive struct {
	Kind        Kind         `json:"kind"`
	Caption     Caption      `json:"caption,omitempty"`
	CaptionText string       `json:"caption_text,omitempty"`
	Message     string       `json:"message,omitempty"`
	Info        *device.Info `json:"info,omitempty"`
}

// Blocking reports whether the directive stands in front of the subscription
// control, so a subscribe request must be ignored while it holds.
func (d Directive) Blocking() bool {
	return d.Kind == KindInstallInstructions
}
