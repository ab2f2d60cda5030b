// Package cookie centralizes how the session credential travels between
// the browser and the service.
package cookie

import (
	"net/http"
	"strings"
	"time"

	"pentrack/config"
	"pentrack/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

// SetSession issues the session cookie alongside a successful login.
// The cookie expiry mirrors the session's absolute expiry.
func SetSession(c echo.Context, cfg *config.CookieConfig, session *entity.Session) {
	ck := &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg != nil {
		ck.Domain = cfg.Domain
		ck.Secure = cfg.Secure
	}

	c.SetCookie(ck)
}

// ClearSession expires the session cookie on logout.
func ClearSession(c echo.Context, cfg *config.CookieConfig) {
	ck := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg != nil {
		ck.Domain = cfg.Domain
		ck.Secure = cfg.Secure
	}

	c.SetCookie(ck)
}

// SessionToken extracts the bearer credential: the session cookie first,
// falling back to an Authorization bearer header for non-browser clients.
func SessionToken(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return token
	}

	return ""
}
