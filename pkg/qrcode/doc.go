// Package qrcode renders QR codes with github.com/skip2/go-qrcode.
//
// pushgate uses it to hand the onboarding page over to a phone: a desktop
// visitor scans the code and continues on the device that will receive the
// notifications.
//
//	img, err := qrcode.PNG("https://push.example.com/", qrcode.WithSize(320))
//	uri, err := qrcode.DataURI(link)
//
//	r.Get("/qr.png", qrcode.Handler(func(*http.Request) string { return publicURL }, log))
//
// Empty content fails with ErrEmptyContent; encoder failures wrap ErrGenerate.
package qrcode
