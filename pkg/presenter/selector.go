package presenter

import (
	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
)

// Selector maps a device snapshot and a subscription state to a Directive.
// It holds only configuration and is safe for concurrent use.
type Selector struct {
	gates []Gate
}

// NewSelector returns a selector for gates. With no gates it uses DefaultGate.
func NewSelector(gates ...Gate) *Selector {
	if len(gates) == 0 {
		gates = []Gate{DefaultGate()}
	}
	return &Selector{gates: append([]Gate(nil), gates...)}
}

// Gates returns a copy of the configured gates.
func (s *Selector) Gates() []Gate {
	return append([]Gate(nil), s.gates...)
}

// Select applies the rules in order, first match wins:
//
//  1. idle or busy on a gated platform outside standalone mode: install instructions
//  2. error: diagnostics with the message
//  3. success: success message
//  4. otherwise loading until info exists, then nothing
//
// Install instructions outrank a leftover error or success because such a user
// cannot subscribe before installing anyway.
func (s *Selector) Select(info *device.Info, st subscription.State) Directive {
	if info != nil && (st.IsIdle() || st.IsBusy()) {
		if g, ok := s.gate(*info); ok {
			caption, text := g.Caption(*info)
			return Directive{Kind: KindInstallInstructions, Caption: caption, CaptionText: text}
		}
	}

	switch {
	case st.IsError():
		return Directive{Kind: KindErrorDiagnostics, Message: st.Message, Info: info}
	case st.IsSuccess():
		return Directive{Kind: KindSuccess, Info: info}
	case info == nil:
		return Directive{Kind: KindLoading}
	default:
		return Directive{Kind: KindNothing}
	}
}

func (s *Selector) gate(info device.Info) (Gate, bool) {
	for _, g := range s.gates {
		if g.Applies(info) {
			return g, true
		}
	}
	return Gate{}, false
}
