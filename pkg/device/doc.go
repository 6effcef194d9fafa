// Package device probes the client runtime once per session and produces an
// immutable Info snapshot: OS family, OS version and whether the app runs in
// installed (standalone) mode.
//
// Signals come from the User-Agent header and from values the page reports
// about itself (display-mode media query, navigator.standalone, Push API
// availability). See SignalsFromRequest for the header and query names.
//
// Detection is total. An unrecognized User-Agent yields OSUnknown with version
// 0.0.0, and a missing display-mode signal means "not installed".
package device
