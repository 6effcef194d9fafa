// Package useragent parses HTTP User-Agent strings into the signals a push
// onboarding flow needs: operating system family and version, browser name and
// version, and a coarse device type.
//
// Parsing is performed with plain keyword look-ups and a handful of
// pre-compiled regular expressions, no external UA database.
//
// # Usage
//
//	ua, err := useragent.Parse(r.UserAgent())
//	if err != nil {
//	    // ua is still usable; err explains why it is degraded
//	}
//
//	if ua.OS() == useragent.OSiOS {
//	    log.Printf("iOS %s", ua.OSVersion())
//	}
//
// # Caveats
//
// iPadOS 13+ in its default "desktop website" mode reports a Macintosh UA and
// is detected as macOS. The client-side display-mode signal is the only reliable
// way to tell an installed iPad app apart.
//
// # Error Handling
//
// Parse may return ErrEmptyUserAgent, ErrMalformedUserAgent or ErrUnknownDevice.
// None of them are fatal: the returned UserAgent is always populated with the
// best available values.
package useragent
