// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"pentrack/config"
	"pentrack/internal/delivery/http/cookie"
	"pentrack/internal/delivery/http/response"
	"pentrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OTPHandler holds dependencies for the one-time-code login handlers.
type OTPHandler struct {
	uc     usecase.AuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewOTPHandler is the constructor for OTPHandler, injected by Fx.
func NewOTPHandler(uc usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *OTPHandler {
	return &OTPHandler{
		uc:     uc,
		cfg:    cfg,
		logger: logger,
	}
}

type requestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyCodeRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,numeric"`
	Remember bool   `json:"remember"`
}

// RequestCode handles POST /auth/otp/request.
func (h *OTPHandler) RequestCode(c echo.Context) error {
	var input requestCodeRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid code request input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RequestLoginCode(c.Request().Context(), usecase.RequestCodeInput{
		Email: input.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"expiresIn": output.ExpiresIn,
	}, "Code sent")
}

// VerifyCode handles POST /auth/otp/verify. A successful verification sets
// the session cookie and returns the caller's profile.
func (h *OTPHandler) VerifyCode(c echo.Context) error {
	var input verifyCodeRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid code verification input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.VerifyLoginCode(c.Request().Context(), usecase.VerifyCodeInput{
		Email:     input.Email,
		Code:      input.Code,
		Remember:  input.Remember,
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	cookie.SetSession(c, h.cfg.Cookie, output.Session)

	return response.Success(c, http.StatusOK, map[string]any{
		"user": toUserView(output.User),
	}, "Login successful")
}
