package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrymomot/pushgate/pkg/cookie"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secretA = "a-very-long-secret-key-for-testing-1234"
	secretB = "another-very-long-secret-for-rotation-99"
)

// roundTrip copies the cookies written to rec onto a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	require.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	require.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	require.ErrorIs(t, err, cookie.ErrSecretTooShort)

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestSigned(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.SetSigned(rec, "device", "key-123")

		got, err := m.GetSigned(roundTrip(rec), "device")
		require.NoError(t, err)
		assert.Equal(t, "key-123", got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "device")
		require.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("tampered value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.SetSigned(rec, "device", "key-123")
		c := rec.Result().Cookies()[0]

		_, sig, _ := strings.Cut(c.Value, ".")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "device", Value: "a2V5LTk5OQ." + sig})

		_, err := m.GetSigned(req, "device")
		require.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, v := range []string{"no-separator", "!!!.sig", "dmFsdWU."} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "device", Value: v})
			_, err := m.GetSigned(req, "device")
			require.ErrorIs(t, err, cookie.ErrInvalidFormat, v)
		}
	})
}

func TestSecretRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	old.SetSigned(rec, "device", "key-1")

	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)
	got, err := rotated.GetSigned(roundTrip(rec), "device")
	require.NoError(t, err)
	assert.Equal(t, "key-1", got)

	fresh, err := cookie.New([]string{secretB})
	require.NoError(t, err)
	_, err = fresh.GetSigned(roundTrip(rec), "device")
	require.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets:  []string{" " + secretA + " "},
		Path:     "/app",
		MaxAge:   time.Hour,
		Secure:   true,
		SameSite: "strict",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "device", "v")
	c := rec.Result().Cookies()[0]

	assert.Equal(t, "/app", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	rec = httptest.NewRecorder()
	m.Set(rec, "plain", "v", cookie.WithMaxAge(0), cookie.WithSameSite(http.SameSiteLaxMode))
	c = rec.Result().Cookies()[0]
	assert.Equal(t, 0, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	rec = httptest.NewRecorder()
	m.Delete(rec, "device")
	c = rec.Result().Cookies()[0]
	assert.Equal(t, -1, c.MaxAge)
}
