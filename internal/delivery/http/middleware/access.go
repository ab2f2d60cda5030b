// Package middleware contains the HTTP middleware for the application.
package middleware

import (
	"strings"

	"pentrack/internal/delivery/http/cookie"
	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys under which the access layer stores the resolved caller.
const (
	ContextKeyUser    = "auth_user"
	ContextKeySession = "auth_session"
)

// Policy is the per-route access declaration resolved by the router and
// evaluated here. Public short-circuits both gates; otherwise the caller
// must hold a valid session (gate one) and, when Roles is non-empty, one
// of the listed roles (gate two).
type Policy struct {
	Public bool
	Roles  entity.Roles
}

// AccessMiddleware enforces the two-gate access decision on every route.
type AccessMiddleware struct {
	sessions usecase.SessionUsecase
}

// NewAccessMiddleware is the constructor for AccessMiddleware.
func NewAccessMiddleware(sessions usecase.SessionUsecase) *AccessMiddleware {
	return &AccessMiddleware{sessions: sessions}
}

// Require builds the middleware enforcing the given policy.
func (m *AccessMiddleware) Require(policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if policy.Public {
				return next(c)
			}

			token := cookie.SessionToken(c)
			if token == "" {
				return errors.Wrap(domainerrors.ErrSessionMissing, "access gate")
			}

			user, session, err := m.sessions.Validate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			if len(policy.Roles) > 0 && !policy.Roles.Contains(user.Role) {
				details := "requires one of roles: " + strings.Join(policy.Roles.ToStrings(), ", ")

				return errors.Wrap(domainerrors.ErrForbidden.WithDetails(details), "role gate")
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// UserFrom returns the caller resolved by the access gate.
func UserFrom(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*entity.User)

	return user, ok
}

// SessionFrom returns the session resolved by the access gate.
func SessionFrom(c echo.Context) (*entity.Session, bool) {
	session, ok := c.Get(ContextKeySession).(*entity.Session)

	return session, ok
}

// UserIDFrom returns the caller's id, or uuid.Nil when unauthenticated.
func UserIDFrom(c echo.Context) uuid.UUID {
	if user, ok := UserFrom(c); ok {
		return user.ID
	}

	return uuid.Nil
}
