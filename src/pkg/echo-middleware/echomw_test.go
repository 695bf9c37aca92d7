package echomw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(time.Hour)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session := store.Create("Administrator")
	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, "Administrator", got.User)

	now = now.Add(time.Hour)
	_, ok = store.Get(session.ID)
	assert.False(t, ok, "session must expire exactly at its TTL")
	assert.Equal(t, 0, store.Len())
}

func TestSessionStoreDeleteAndUnknown(t *testing.T) {
	store := NewSessionStore(time.Hour)
	session := store.Create("op")
	store.Delete(session.ID)

	_, ok := store.Get(session.ID)
	assert.False(t, ok)
	_, ok = store.Get("")
	assert.False(t, ok)
}

func TestCredentialsMatch(t *testing.T) {
	creds := Credentials{Username: "Administrator", Password: "s3cret"}
	assert.True(t, creds.Match("  Administrator ", "s3cret"))
	assert.False(t, creds.Match("Administrator", "s3cret "))
	assert.False(t, creds.Match("admin", "s3cret"))

	assert.False(t, Credentials{Username: "a"}.Match("a", ""), "unconfigured credentials fail closed")
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(0, 2)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(0, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	now = now.Add(2 * limiterIdleTTL)
	assert.True(t, limiter.Allow("10.0.0.1"), "idle bucket is dropped and refilled")
}

func newTestGate() *Gate {
	cfg := DefaultValueConfig()
	gate := NewGate(NewSessionStore(time.Hour), cfg)
	gate.BearerToken = "automation-token"
	return gate
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGateAPIAuth(t *testing.T) {
	gate := newTestGate()
	e := echo.New()
	e.GET("/api/thing", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, gate.RequireAPIAuth)
	e.POST("/login", func(c echo.Context) error {
		gate.Login(c, "op")
		return c.NoContent(http.StatusOK)
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/thing", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	req := httptest.NewRequest(http.MethodGet, "/api/thing", nil)
	req.Header.Set("Authorization", "bearer   automation-token")
	assert.Equal(t, http.StatusOK, serve(e, req).Code)

	loginRec := serve(e, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := loginRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req = httptest.NewRequest(http.MethodGet, "/api/thing", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestGatePageRedirects(t *testing.T) {
	gate := newTestGate()
	e := echo.New()
	e.GET("/dashboard", func(c echo.Context) error { return c.String(http.StatusOK, "dash") }, gate.RequirePageAuth)
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "login") }, gate.RedirectIfAuthenticated)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	session := gate.Sessions.Create("op")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: gate.CookieName, Value: session.ID})
	rec = serve(e, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(0, 1)
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, limiter.Middleware)

	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
