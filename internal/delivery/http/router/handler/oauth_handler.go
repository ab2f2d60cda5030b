package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"pentrack/config"
	"pentrack/internal/delivery/http/cookie"
	"pentrack/internal/delivery/http/response"
	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OAuthHandler holds dependencies for the federated login handlers.
type OAuthHandler struct {
	uc     usecase.OAuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewOAuthHandler is the constructor for OAuthHandler, injected by Fx.
func NewOAuthHandler(uc usecase.OAuthUsecase, cfg *config.Config, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		uc:     uc,
		cfg:    cfg,
		logger: logger,
	}
}

// Begin handles GET /auth/google?role=. It returns the provider consent URL
// for the client to navigate to.
func (h *OAuthHandler) Begin(c echo.Context) error {
	role := entity.Role(c.QueryParam("role"))

	output, err := h.uc.BeginAuth(c.Request().Context(), usecase.BeginAuthInput{Role: role})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"url":   output.RedirectURL,
		"state": output.State,
	}, "Authorization URL created")
}

// Callback handles GET /auth/google/callback?code=&state=. The caller is a
// browser mid-redirect, so the outcome is a redirect rather than a JSON body.
func (h *OAuthHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return h.redirectFailure(c, domainerrors.ErrOAuthStateInvalid.ErrorCode())
	}

	output, err := h.uc.CompleteAuth(c.Request().Context(), usecase.CompleteAuthInput{
		State:     state,
		Code:      code,
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	})
	if err != nil {
		h.logger.Warn("Federated callback failed", slog.Any("error", err))

		errorCode := domainerrors.ErrOAuthExchangeFailed.ErrorCode()
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			errorCode = appErr.ErrorCode()
		}

		return h.redirectFailure(c, errorCode)
	}

	cookie.SetSession(c, h.cfg.Cookie, output.Session)

	location := h.cfg.GoogleOAuth.SuccessRedirect
	if output.IsNewUser {
		location = appendQuery(location, "welcome", "1")
	}

	return c.Redirect(http.StatusFound, location)
}

func (h *OAuthHandler) redirectFailure(c echo.Context, errorCode string) error {
	return c.Redirect(http.StatusFound, appendQuery(h.cfg.GoogleOAuth.FailureRedirect, "error", errorCode))
}

// appendQuery adds one query parameter to a location, tolerating locations
// that already carry a query string.
func appendQuery(location, key, value string) string {
	parsed, err := url.Parse(location)
	if err != nil {
		return location
	}

	query := parsed.Query()
	query.Set(key, value)
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
