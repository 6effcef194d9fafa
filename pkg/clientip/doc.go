// Package clientip resolves the originating client address of a request.
//
// Behind a reverse proxy, enable trustProxy so CF-Connecting-IP, X-Real-IP
// and X-Forwarded-For are read; exposed directly, leave it off and only the
// TCP peer address counts. pushgate uses the address as the rate limit key of
// last resort and as a log attribute.
package clientip
