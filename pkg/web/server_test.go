package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushgate/pkg/cookie"
	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/identity"
	"github.com/dmitrymomot/pushgate/pkg/metrics"
	"github.com/dmitrymomot/pushgate/pkg/onboarding"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/provider"
	"github.com/dmitrymomot/pushgate/pkg/ratelimiter"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
	"github.com/dmitrymomot/pushgate/pkg/web"
)

const (
	uaAndroid   = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Mobile Safari/537.36"
	uaIPhone164 = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.4 Mobile/15E148 Safari/604.1"
	uaIPhone170 = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaDesktop   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"
)

type recordingSubscriber struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (s *recordingSubscriber) Subscribe(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, userID)
	return s.err
}

func (s *recordingSubscriber) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.users...)
}

type fixture struct {
	handler  http.Handler
	registry *onboarding.Registry
	store    *identity.MemoryStore
}

func newFixture(t *testing.T, sub onboarding.Subscriber, opts ...web.Option) fixture {
	t.Helper()
	return newFixtureWithRegistry(t, onboarding.NewRegistry(time.Minute), sub, opts...)
}

func newFixtureWithRegistry(t *testing.T, registry *onboarding.Registry, sub onboarding.Subscriber, opts ...web.Option) fixture {
	t.Helper()

	cookies, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)

	t.Cleanup(func() { _ = registry.Close() })
	store := identity.NewMemoryStore()

	srv, err := web.New(registry, store, sub, cookies, opts...)
	require.NoError(t, err)

	return fixture{handler: srv.Routes(), registry: registry, store: store}
}

func (f fixture) do(t *testing.T, method, target, ua string, header http.Header, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("User-Agent", ua)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type sessionBody struct {
	Data struct {
		Directive presenter.Directive `json:"directive"`
		State     subscription.State  `json:"state"`
	} `json:"data"`
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionBody {
	t.Helper()
	var body sessionBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func datastarHeader(extra map[string]string) http.Header {
	h := http.Header{}
	h.Set("Datastar-Request", "true")
	h.Set("Accept", "text/event-stream")
	for k, v := range extra {
		h.Set(k, v)
	}
	return h
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)
	reg := onboarding.NewRegistry(0)
	store := identity.NewMemoryStore()
	sub := provider.Discard()

	_, err = web.New(nil, store, sub, cookies)
	require.ErrorIs(t, err, web.ErrNilRegistry)
	_, err = web.New(reg, nil, sub, cookies)
	require.ErrorIs(t, err, web.ErrNilStore)
	_, err = web.New(reg, store, nil, cookies)
	require.ErrorIs(t, err, web.ErrNilSubscriber)
	_, err = web.New(reg, store, sub, nil)
	require.ErrorIs(t, err, web.ErrNilCookies)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())
	rec := f.do(t, http.MethodGet, "/health", uaDesktop, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPageStartsLoading(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())

	rec := f.do(t, http.MethodGet, "/", uaDesktop, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, `id="directive"`)
	assert.Contains(t, body, `data-kind="loading"`)
	assert.Contains(t, body, `@get('/directive'`)
	assert.Contains(t, body, `src="/qr.png"`, "desktop visitors get the hand-off QR code")
	assert.NotEmpty(t, rec.Result().Cookies(), "device key cookie is issued")

	rec = f.do(t, http.MethodGet, "/", uaAndroid, nil)
	assert.NotContains(t, rec.Body.String(), `src="/qr.png"`)
}

func TestDirectiveJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ua      string
		headers map[string]string
		kind    presenter.Kind
		caption presenter.Caption
		status  subscription.Status
	}{
		{name: "iOS below minimum", ua: uaIPhone164, kind: presenter.KindInstallInstructions, caption: presenter.CaptionUpgradeFirst, status: subscription.StatusIdle},
		{name: "iOS eligible", ua: uaIPhone170, kind: presenter.KindInstallInstructions, caption: presenter.CaptionEligible, status: subscription.StatusIdle},
		{name: "iOS installed", ua: uaIPhone170, headers: map[string]string{device.HeaderDisplayMode: "standalone"}, kind: presenter.KindNothing, status: subscription.StatusIdle},
		{name: "android", ua: uaAndroid, kind: presenter.KindNothing, status: subscription.StatusIdle},
		{name: "no push api", ua: uaAndroid, headers: map[string]string{device.HeaderPushAPI: "false"}, kind: presenter.KindNothing, status: subscription.StatusUnsupported},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, provider.Discard())
			h := http.Header{}
			for k, v := range tc.headers {
				h.Set(k, v)
			}

			rec := f.do(t, http.MethodGet, "/directive", tc.ua, h)
			require.Equal(t, http.StatusOK, rec.Code)

			body := decodeSession(t, rec)
			assert.Equal(t, tc.kind, body.Data.Directive.Kind)
			assert.Equal(t, tc.caption, body.Data.Directive.Caption)
			assert.Equal(t, tc.status, body.Data.State.Status)
		})
	}
}

func TestDirectiveDatastarPatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())
	rec := f.do(t, http.MethodGet, "/directive", uaIPhone164, datastarHeader(nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, "Upgrade your iOS to 16.5")
	assert.NotContains(t, body, `class="subscribe"`, "install instructions hide the control")
}

func TestSubscribeWait(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{}
	f := newFixture(t, sub)

	rec := f.do(t, http.MethodPost, "/subscribe?wait=true", uaAndroid, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeSession(t, rec)
	assert.Equal(t, subscription.StatusSuccess, body.Data.State.Status)
	assert.Equal(t, presenter.KindSuccess, body.Data.Directive.Kind)
	require.NotNil(t, body.Data.Directive.Info)
	assert.Equal(t, device.OSAndroid, body.Data.Directive.Info.OSName)

	calls := sub.calls()
	require.Len(t, calls, 1)
	assert.NotEmpty(t, calls[0])
	assert.Equal(t, 1, f.store.Len())

	// The same browser sees its settled session on the page.
	page := f.do(t, http.MethodGet, "/", uaAndroid, nil, rec.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "You are subscribed")
	assert.Equal(t, 1, f.registry.Len())
}

func TestSubscribeAccepted(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := newFixture(t, provider.Func(func(ctx context.Context, _ string) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}))
	defer close(release)

	rec := f.do(t, http.MethodPost, "/subscribe", uaAndroid, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, subscription.StatusBusy, decodeSession(t, rec).Data.State.Status)
}

func TestSubscribeIgnoredWhileInstallRequired(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{}
	f := newFixture(t, sub)

	rec := f.do(t, http.MethodPost, "/subscribe?wait=1", uaIPhone170, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeSession(t, rec)
	assert.Equal(t, presenter.KindInstallInstructions, body.Data.Directive.Kind)
	assert.Equal(t, subscription.StatusIdle, body.Data.State.Status)
	assert.Empty(t, sub.calls())
}

func TestSubscribeBadWait(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())
	h := http.Header{}
	h.Set("Accept", "application/json")

	rec := f.do(t, http.MethodPost, "/subscribe?wait=maybe", uaAndroid, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bad_request"`)
}

func TestSubscribeStreamFailure(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{err: &provider.Error{Status: http.StatusTooManyRequests, Message: "Quota exceeded"}}
	f := newFixture(t, sub)

	rec := f.do(t, http.MethodPost, "/subscribe", uaAndroid, datastarHeader(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `data-kind="error_diagnostics"`)
	assert.Contains(t, body, "Quota exceeded")
	assert.Contains(t, body, "Try again")
	assert.Contains(t, body, "Device details")
	assert.Len(t, sub.calls(), 1)
}

func TestSubscribeStreamSuccessInstalledIOS(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{}
	f := newFixture(t, sub)

	rec := f.do(t, http.MethodPost, "/subscribe", uaIPhone170, datastarHeader(map[string]string{
		device.HeaderDisplayMode: "standalone",
		device.HeaderPushAPI:     "true",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-kind="success"`)
	assert.Len(t, sub.calls(), 1)
}

func TestQRCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard(), web.WithPublicURL("https://push.example.com/"))
	rec := f.do(t, http.MethodGet, "/qr.png?size=128", uaDesktop, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())
	h := http.Header{}
	h.Set("Accept", "application/json")

	rec := f.do(t, http.MethodGet, "/nope", uaDesktop, h)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestSubscribeRateLimited(t *testing.T) {
	t.Parallel()

	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	sub := &recordingSubscriber{}
	f := newFixture(t, sub, web.WithSubscribeLimiter(bucket))
	h := http.Header{}
	h.Set("Accept", "application/json")

	first := f.do(t, http.MethodPost, "/subscribe?wait=true", uaAndroid, h)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(t, http.MethodPost, "/subscribe", uaAndroid, h, first.Result().Cookies()...)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "Too many attempts")
	assert.Len(t, sub.calls(), 1, "the limited request never reached the provider")

	other := f.do(t, http.MethodPost, "/subscribe?wait=true", uaAndroid, h)
	assert.Equal(t, http.StatusOK, other.Code, "a new browser has its own budget")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	f := newFixture(t, provider.Discard(), web.WithMetrics(m), web.WithSubscribeLimiter(bucket))
	h := http.Header{}
	h.Set("Accept", "application/json")

	first := f.do(t, http.MethodPost, "/subscribe?wait=true", uaAndroid, h)
	require.Equal(t, http.StatusOK, first.Code)
	limited := f.do(t, http.MethodPost, "/subscribe", uaAndroid, h, first.Result().Cookies()...)
	require.Equal(t, http.StatusTooManyRequests, limited.Code)

	rec := f.do(t, http.MethodGet, "/metrics", uaDesktop, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `pushgate_subscription_attempts_total{outcome="success"} 1`)
	assert.Contains(t, body, `pushgate_web_directives_served_total{kind="success"} 1`)
	assert.Contains(t, body, `pushgate_web_subscribe_rate_limited_total 1`)
}

func TestMetricsDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())
	rec := f.do(t, http.MethodGet, "/metrics", uaDesktop, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectiveRefreshesChangedDevice(t *testing.T) {
	t.Parallel()

	signals := func(pushAPI, displayMode string) http.Header {
		h := http.Header{}
		h.Set(device.HeaderPushAPI, pushAPI)
		h.Set(device.HeaderDisplayMode, displayMode)
		return h
	}

	t.Run("changed signals replace an idle session", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, provider.Discard())

		first := f.do(t, http.MethodGet, "/directive", uaDesktop, signals("false", "browser"))
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, subscription.StatusUnsupported, decodeSession(t, first).Data.State.Status)
		jar := first.Result().Cookies()

		again := f.do(t, http.MethodGet, "/directive", uaDesktop, signals("true", "standalone"), jar...)
		require.Equal(t, http.StatusOK, again.Code)
		body := decodeSession(t, again)
		assert.Equal(t, subscription.StatusIdle, body.Data.State.Status)
		assert.Equal(t, presenter.KindNothing, body.Data.Directive.Kind)
		assert.Equal(t, 1, f.registry.Len())
	})

	t.Run("same signals keep the settled session", func(t *testing.T) {
		t.Parallel()

		sub := &recordingSubscriber{}
		f := newFixture(t, sub)
		h := signals("true", "browser")

		rec := f.do(t, http.MethodPost, "/subscribe?wait=true", uaAndroid, h)
		require.Equal(t, subscription.StatusSuccess, decodeSession(t, rec).Data.State.Status)
		jar := rec.Result().Cookies()

		rec = f.do(t, http.MethodGet, "/directive", uaAndroid, h, jar...)
		assert.Equal(t, subscription.StatusSuccess, decodeSession(t, rec).Data.State.Status)

		rec = f.do(t, http.MethodGet, "/directive", uaAndroid, signals("true", "standalone"), jar...)
		assert.Equal(t, subscription.StatusIdle, decodeSession(t, rec).Data.State.Status, "installed app starts over")
		assert.Len(t, sub.calls(), 1)
	})

	t.Run("busy session is not replaced", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		f := newFixture(t, provider.Func(func(ctx context.Context, _ string) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}))
		defer close(release)

		rec := f.do(t, http.MethodPost, "/subscribe", uaAndroid, signals("true", "browser"))
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = f.do(t, http.MethodGet, "/directive", uaAndroid, signals("true", "standalone"), rec.Result().Cookies()...)
		assert.Equal(t, subscription.StatusBusy, decodeSession(t, rec).Data.State.Status)
	})
}

func TestSessionLimit(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := newFixtureWithRegistry(t, onboarding.NewRegistry(time.Minute, onboarding.WithMaxSessions(1)),
		provider.Func(func(ctx context.Context, _ string) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}))
	defer close(release)

	h := http.Header{}
	h.Set("Accept", "application/json")

	busy := f.do(t, http.MethodPost, "/subscribe", uaAndroid, h)
	require.Equal(t, http.StatusAccepted, busy.Code)

	// A cookie-less client would need a second session.
	rec := f.do(t, http.MethodGet, "/directive", uaAndroid, h)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many visitors")
	assert.Equal(t, 1, f.registry.Len())
}

func TestPageShowsDeviceFooter(t *testing.T) {
	t.Parallel()

	f := newFixture(t, provider.Discard())

	rec := f.do(t, http.MethodGet, "/", uaAndroid, nil)
	assert.NotContains(t, rec.Body.String(), `<footer class="device">`)
	jar := rec.Result().Cookies()

	rec = f.do(t, http.MethodGet, "/directive", uaAndroid, nil, jar...)
	require.Equal(t, http.StatusOK, rec.Code)

	page := f.do(t, http.MethodGet, "/", uaAndroid, nil, jar...)
	body := page.Body.String()
	assert.Contains(t, body, `<footer class="device">`)
	assert.Contains(t, body, "Android 13.0.0")
	assert.Contains(t, body, `<main data-on-load="@get('/directive'`, "every load reports its signals")
}
