package handler

import (
	"log/slog"
	"net/http"

	"pentrack/config"
	"pentrack/internal/delivery/http/cookie"
	"pentrack/internal/delivery/http/middleware"
	"pentrack/internal/delivery/http/response"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the session-scoped handlers.
type AuthHandler struct {
	auth     usecase.AuthUsecase
	sessions usecase.SessionUsecase
	cfg      *config.Config
	logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, sessions usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return errors.Wrap(domainerrors.ErrSessionMissing, "me")
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"user": toUserView(user),
	}, "")
}

// Logout handles POST /auth/logout. It revokes the current session and
// clears the cookie; logout is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := cookie.SessionToken(c)
	if err := h.sessions.Revoke(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	cookie.ClearSession(c, h.cfg.Cookie)

	return response.Success(c, http.StatusOK, nil, "Logged out")
}

// LogoutAll handles POST /auth/logout-all. It revokes every session owned
// by the caller.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID := middleware.UserIDFrom(c)
	if userID == uuid.Nil {
		return errors.Wrap(domainerrors.ErrSessionMissing, "logout all")
	}

	if err := h.sessions.RevokeAll(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	cookie.ClearSession(c, h.cfg.Cookie)

	return response.Success(c, http.StatusOK, nil, "All sessions revoked")
}

// Sessions handles GET /auth/sessions.
func (h *AuthHandler) Sessions(c echo.Context) error {
	userID := middleware.UserIDFrom(c)
	if userID == uuid.Nil {
		return errors.Wrap(domainerrors.ErrSessionMissing, "list sessions")
	}

	var currentID uuid.UUID
	if current, ok := middleware.SessionFrom(c); ok {
		currentID = current.ID
	}

	sessions, err := h.sessions.ListActive(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, toSessionView(session, currentID))
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"sessions": views,
	}, "")
}

// WebSocketToken handles GET /auth/ws-token.
func (h *AuthHandler) WebSocketToken(c echo.Context) error {
	userID := middleware.UserIDFrom(c)
	if userID == uuid.Nil {
		return errors.Wrap(domainerrors.ErrSessionMissing, "websocket token")
	}

	output, err := h.auth.WebSocketToken(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"token":     output.Token,
		"expiresIn": output.ExpiresIn,
	}, "")
}
