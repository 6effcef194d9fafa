package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
)

// PanelID is the element Datastar patches on every directive change.
const PanelID = "directive"

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.4/bundles/datastar.js"

// signalsScript reports the runtime signals the server cannot see in the UA.
const signalsScript = `window.pushgateSignals = function () {
  var standalone = ['standalone', 'fullscreen', 'minimal-ui'].some(function (m) {
    return window.matchMedia('(display-mode: ' + m + ')').matches;
  });
  return {
    'X-Display-Mode': standalone ? 'standalone' : 'browser',
    'X-Navigator-Standalone': String(window.navigator.standalone === true),
    'X-Push-API': String('PushManager' in window && 'serviceWorker' in navigator)
  };
};`

// panelView is everything the directive panel needs.
type panelView struct {
	Directive presenter.Directive
	State     subscription.State
}

type pageView struct {
	Title  string
	Panel  panelView
	Info   *device.Info
	ShowQR bool
	QRAlt  string
}

type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

// Page is the full onboarding document.
func Page(v pageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="apple-mobile-web-app-capable" content="yes">`)
		h.raw(`<title>`)
		h.text(v.Title)
		h.raw(`</title><script>`)
		h.raw(signalsScript)
		h.raw(`</script><script type="module" src="` + datastarScript + `"></script></head><body>`)
		h.raw(`<main data-on-load="@get('/directive', {headers: pushgateSignals()})">`)
		h.raw(`<h1>`)
		h.text(v.Title)
		h.raw(`</h1>`)
		h.component(ctx, Panel(v.Panel))
		if v.ShowQR {
			h.component(ctx, handoff(v.QRAlt))
		}
		h.raw(`</main>`)
		if v.Info != nil {
			h.raw(`<footer class="device">`)
			h.component(ctx, deviceTable(*v.Info))
			h.raw(`</footer>`)
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

// Panel renders one directive with the subscription control under it.
func Panel(v panelView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		kind := v.Directive.Kind.String()
		h.raw(`<section id="` + PanelID + `" class="directive directive--`)
		h.text(kind)
		h.raw(`" data-kind="`)
		h.text(kind)
		h.raw(`" data-status="`)
		h.text(v.State.Status.String())
		h.raw(`">`)

		switch v.Directive.Kind {
		case presenter.KindLoading:
			h.component(ctx, loading())
		case presenter.KindInstallInstructions:
			h.component(ctx, installInstructions(v.Directive))
		case presenter.KindErrorDiagnostics:
			h.component(ctx, errorDiagnostics(v.Directive))
		case presenter.KindSuccess:
			h.component(ctx, success(v.Directive))
		}

		if !v.Directive.Blocking() && v.Directive.Kind != presenter.KindLoading {
			h.component(ctx, control(v.State))
		}

		h.raw(`</section>`)
		return h.err
	})
}

func loading() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<p class="loading">Checking your device&hellip;</p>`)
		return h.err
	})
}

var installSteps = []string{
	"Tap the Share button in Safari.",
	"Choose \"Add to Home Screen\".",
	"Open the app from your Home Screen and enable notifications there.",
}

func installInstructions(d presenter.Directive) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="install" data-caption="`)
		h.text(string(d.Caption))
		h.raw(`"><p class="install__caption">`)
		h.text(d.CaptionText)
		h.raw(`</p><ol class="install__steps">`)
		for _, step := range installSteps {
			h.raw(`<li>`)
			h.text(step)
			h.raw(`</li>`)
		}
		h.raw(`</ol></div>`)
		return h.err
	})
}

func errorDiagnostics(d presenter.Directive) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="error" role="alert"><p class="error__message">`)
		h.text(d.Message)
		h.raw(`</p>`)
		if d.Info != nil {
			h.component(ctx, deviceTable(*d.Info))
		}
		h.raw(`</div>`)
		return h.err
	})
}

func deviceTable(info device.Info) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		rows := [][2]string{
			{"Operating system", info.DisplayOS()},
			{"Browser", info.DisplayBrowser()},
			{"Device type", info.DeviceType},
			{"Installed app", strconv.FormatBool(info.Standalone)},
			{"Push API", string(info.PushAPI)},
			{"Identifier", info.Identifier},
		}
		h.raw(`<details class="diagnostics"><summary>Device details</summary><table><tbody>`)
		for _, row := range rows {
			h.raw(`<tr><th scope="row">`)
			h.text(row[0])
			h.raw(`</th><td>`)
			h.text(row[1])
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></details>`)
		return h.err
	})
}

var successNotes = []string{
	"You should receive a notification on this device shortly.",
	"If nothing arrives, check the notification settings of your operating system first: notifications may be muted for this browser.",
	"If that does not explain it, contact us and include the device details below.",
}

func success(d presenter.Directive) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="success"><p class="success__title">You are subscribed.</p>`)
		for _, note := range successNotes {
			h.raw(`<p class="success__note">`)
			h.text(note)
			h.raw(`</p>`)
		}
		if d.Info != nil {
			h.component(ctx, deviceTable(*d.Info))
		}
		h.raw(`</div>`)
		return h.err
	})
}

func control(st subscription.State) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		switch st.Status {
		case subscription.StatusUnsupported:
			h.raw(`<p class="unsupported">This browser cannot receive push notifications.</p>`)
		case subscription.StatusBusy:
			h.raw(`<button type="button" class="subscribe" disabled aria-busy="true">Enabling&hellip;</button>`)
		default:
			label := "Enable notifications"
			switch {
			case st.IsError():
				label = "Try again"
			case st.IsSuccess():
				label = "Subscribe again"
			}
			h.raw(`<button type="button" class="subscribe" data-on-click="@post('/subscribe', {headers: pushgateSignals()})">`)
			h.text(label)
			h.raw(`</button>`)
		}
		return h.err
	})
}

func handoff(alt string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<aside class="handoff"><p>Notifications go to the device you subscribe on. Scan to continue on your phone.</p>`)
		h.raw(`<img src="/qr.png" width="192" height="192" alt="`)
		h.text(alt)
		h.raw(`"></aside>`)
		return h.err
	})
}
