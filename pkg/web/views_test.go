package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
	"github.com/dmitrymomot/pushgate/pkg/version"
)

func renderPanel(t *testing.T, v panelView) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Panel(v).Render(context.Background(), &buf))
	return buf.String()
}

func TestPanel(t *testing.T) {
	t.Parallel()

	info := &device.Info{
		OSName:     device.OSAndroid,
		OSVersion:  version.New(13, 0, 0),
		Browser:    "chrome",
		DeviceType: "mobile",
		PushAPI:    device.PushAPIAvailable,
		Identifier: "Chrome/116 (Android 13, mobile)",
	}
	idle := subscription.State{Status: subscription.StatusIdle}

	tests := []struct {
		name     string
		view     panelView
		contains []string
		excludes []string
	}{
		{
			name:     "loading",
			view:     panelView{Directive: presenter.Directive{Kind: presenter.KindLoading}, State: idle},
			contains: []string{`data-kind="loading"`, "Checking your device"},
			excludes: []string{`class="subscribe"`},
		},
		{
			name: "install",
			view: panelView{
				Directive: presenter.Directive{Kind: presenter.KindInstallInstructions, Caption: presenter.CaptionEligible, CaptionText: "Follow the steps"},
				State:     idle,
			},
			contains: []string{`data-caption="eligible"`, "Follow the steps", "Add to Home Screen"},
			excludes: []string{`class="subscribe"`},
		},
		{
			name:     "nothing shows the control",
			view:     panelView{Directive: presenter.Directive{Kind: presenter.KindNothing}, State: idle},
			contains: []string{"Enable notifications", `@post('/subscribe'`},
		},
		{
			name:     "busy disables the control",
			view:     panelView{Directive: presenter.Directive{Kind: presenter.KindNothing}, State: subscription.State{Status: subscription.StatusBusy}},
			contains: []string{"disabled", `aria-busy="true"`},
			excludes: []string{`@post('/subscribe'`},
		},
		{
			name:     "unsupported",
			view:     panelView{Directive: presenter.Directive{Kind: presenter.KindNothing}, State: subscription.State{Status: subscription.StatusUnsupported}},
			contains: []string{"cannot receive push notifications"},
			excludes: []string{`class="subscribe"`},
		},
		{
			name: "error escapes the message",
			view: panelView{
				Directive: presenter.Directive{Kind: presenter.KindErrorDiagnostics, Message: `<script>alert(1)</script>`, Info: info},
				State:     subscription.State{Status: subscription.StatusError, Message: "x"},
			},
			contains: []string{"&lt;script&gt;", "Android 13.0.0", "Try again", "available"},
			excludes: []string{"<script>alert"},
		},
		{
			name:     "success shows device details and allows subscribing again",
			view:     panelView{Directive: presenter.Directive{Kind: presenter.KindSuccess, Info: info}, State: subscription.State{Status: subscription.StatusSuccess}},
			contains: []string{"You are subscribed", "notification settings of your operating system", "Device details", "Android 13.0.0", "Subscribe again", `@post('/subscribe'`},
			excludes: []string{"disabled"},
		},
		{
			name:     "success without snapshot",
			view:     panelView{Directive: presenter.Directive{Kind: presenter.KindSuccess}, State: subscription.State{Status: subscription.StatusSuccess}},
			contains: []string{"You are subscribed", "Subscribe again"},
			excludes: []string{"Device details"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := renderPanel(t, tc.view)
			assert.Contains(t, out, `id="directive"`)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPageEscapesTitle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Page(pageView{
		Title: "Alerts & <News>",
		Panel: panelView{Directive: presenter.Directive{Kind: presenter.KindLoading}},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Alerts &amp; &lt;News&gt;")
	assert.Contains(t, out, "pushgateSignals")
	assert.NotContains(t, out, "qr.png")
}

func TestPageReportsSignalsOnEveryLoad(t *testing.T) {
	t.Parallel()

	info := &device.Info{OSName: device.OSiOS, OSVersion: version.New(17, 0, 0), Standalone: true, Identifier: "Safari/17.0 (iOS 17.0, mobile)"}
	success := panelView{
		Directive: presenter.Directive{Kind: presenter.KindSuccess, Info: info},
		State:     subscription.State{Status: subscription.StatusSuccess},
	}

	var buf bytes.Buffer
	require.NoError(t, Page(pageView{Title: "Push", Panel: success, Info: info}).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `<main data-on-load="@get('/directive'`)
	assert.Contains(t, out, `<footer class="device">`)
	assert.Contains(t, out, "iOS 17.0.0")

	buf.Reset()
	require.NoError(t, Page(pageView{Title: "Push", Panel: panelView{Directive: presenter.Directive{Kind: presenter.KindLoading}}}).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<footer")
}
