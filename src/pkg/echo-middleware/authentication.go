// Package echomw provides Echo middlewares used by the dashboard server.
package echomw

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

const (
	// Env vars read by this package.
	EnvDashboardUsername = "DASHBOARD_USERNAME"
	EnvDashboardPassword = "DASHBOARD_PASS"
	EnvAPIBearerToken    = "DASHBOARD_API_TOKEN" // optional, for scripts hitting /api without a browser session

	// Realm for WWW-Authenticate header.
	authRealm = "erp-dashboard"

	// context key holding the Session of an authenticated request
	SessionContextKey = "session"
)

// Credentials is the single operator allowed in.
type Credentials struct {
	Username string
	Password string
}

// CredentialsFromEnv reads DASHBOARD_USERNAME and DASHBOARD_PASS.
func CredentialsFromEnv() Credentials {
	return Credentials{
		Username: strings.TrimSpace(os.Getenv(EnvDashboardUsername)),
		Password: os.Getenv(EnvDashboardPassword),
	}
}

// Configured is false when either value is empty; login then fails closed.
func (c Credentials) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// Match compares in constant time. The submitted username is trimmed.
func (c Credentials) Match(username, password string) bool {
	if !c.Configured() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK
}

/*
Gate decides who gets past the protected routes. A request is authenticated
when it carries a live session cookie, or an Authorization: Bearer header that
matches DASHBOARD_API_TOKEN (when that is set).
*/
type Gate struct {
	Sessions    *SessionStore
	CookieName  string
	Secure      bool
	BearerToken string
}

func NewGate(sessions *SessionStore, cfg Config) *Gate {
	return &Gate{
		Sessions:    sessions,
		CookieName:  cfg.SessionCookieName,
		Secure:      !cfg.InsecureCookies,
		BearerToken: strings.TrimSpace(os.Getenv(EnvAPIBearerToken)),
	}
}

// CurrentSession returns the session attached to the request cookie.
func (g *Gate) CurrentSession(c echo.Context) (Session, bool) {
	cookie, err := c.Cookie(g.CookieName)
	if err != nil {
		return Session{}, false
	}
	return g.Sessions.Get(cookie.Value)
}

// Login creates a session and sets the cookie.
func (g *Gate) Login(c echo.Context, user string) Session {
	session := g.Sessions.Create(user)
	c.SetCookie(&http.Cookie{
		Name:     g.CookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}

// Logout drops the session (if any) and expires the cookie.
func (g *Gate) Logout(c echo.Context) {
	if cookie, err := c.Cookie(g.CookieName); err == nil {
		g.Sessions.Delete(cookie.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     g.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAPIAuth answers 401 JSON to unauthenticated API calls.
func (g *Gate) RequireAPIAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if session, ok := g.CurrentSession(c); ok {
			c.Set(SessionContextKey, session)
			return next(c)
		}
		if g.validBearer(c) {
			return next(c)
		}
		return unauthorized(c)
	}
}

// RequirePageAuth redirects unauthenticated page loads to the login page.
func (g *Gate) RequirePageAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := g.CurrentSession(c)
		if !ok {
			LogRouteAccess(c, tl.Info, "Redirecting unauthenticated visitor", palette.Yellow)
			return c.Redirect(http.StatusFound, "/")
		}
		c.Set(SessionContextKey, session)
		return next(c)
	}
}

// RedirectIfAuthenticated sends operators who are already logged in to the dashboard.
func (g *Gate) RedirectIfAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := g.CurrentSession(c); ok {
			return c.Redirect(http.StatusFound, "/dashboard")
		}
		return next(c)
	}
}

func (g *Gate) validBearer(c echo.Context) bool {
	if g.BearerToken == "" {
		return false
	}
	auth := strings.TrimSpace(c.Request().Header.Get("Authorization"))
	if auth == "" {
		return false
	}

	// Case-insensitive scheme per RFC; allow extra spaces.
	const bearer = "bearer "
	if len(auth) < len(bearer) || !strings.EqualFold(auth[:len(bearer)], bearer) {
		return false
	}
	received := strings.TrimSpace(auth[len(bearer):])
	if received == "" {
		return false
	}

	// Constant-time compare.
	return subtle.ConstantTimeCompare([]byte(received), []byte(g.BearerToken)) == 1
}

func unauthorized(c echo.Context) error {
	LogRouteAccess(c, tl.Info, "Unauthorized access attempt", palette.Yellow) // Log the visit

	// Helpful for clients/tools; avoids browser basic-auth popups.
	c.Response().Header().Set("WWW-Authenticate", `Bearer realm="`+authRealm+`"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
	})
}
