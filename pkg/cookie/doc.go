// Package cookie writes and verifies HMAC-SHA256 signed cookies.
//
// pushgate keeps one long-lived, signed device key cookie per browser; the
// identity store maps it to a push user id.
//
//	m, err := cookie.NewFromConfig(cfg)
//	m.SetSigned(w, "pg_device", key)
//	key, err := m.GetSigned(r, "pg_device")
//
// Secrets must be at least 32 characters. Several secrets may be configured:
// the first signs, all of them verify.
package cookie
