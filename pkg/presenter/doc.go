// Package presenter decides what the user sees. Select is a pure function of
// the device snapshot and the subscription state that returns one Directive
// out of a closed set; renderers paint it and decide nothing themselves.
//
// Gates describe platforms where push only works for installed apps. The
// default gate covers iOS from 16.5; more can be loaded from YAML with
// LoadGates.
package presenter
