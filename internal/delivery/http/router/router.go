// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pentrack/internal/delivery/http/middleware"
	"pentrack/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	OTPHandler       *handler.OTPHandler
	OAuthHandler     *handler.OAuthHandler
	AuthHandler      *handler.AuthHandler
	AccessMiddleware *middleware.AccessMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	otpHandler   *handler.OTPHandler
	oauthHandler *handler.OAuthHandler
	authHandler  *handler.AuthHandler
	access       *middleware.AccessMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		otpHandler:   params.OTPHandler,
		oauthHandler: params.OAuthHandler,
		authHandler:  params.AuthHandler,
		access:       params.AccessMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application. Every route
// carries an explicit access policy; the public ones say so rather than
// relying on the absence of a middleware.
func (r *router) RegisterRoutes(e *echo.Echo) {
	public := middleware.Policy{Public: true}
	authenticated := middleware.Policy{}

	// Health check endpoint
	e.GET("/health", handler.HealthCheck, r.access.Require(public))

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/otp/request", r.otpHandler.RequestCode, r.access.Require(public))
		authGroup.POST("/otp/verify", r.otpHandler.VerifyCode, r.access.Require(public))

		authGroup.GET("/google", r.oauthHandler.Begin, r.access.Require(public))
		authGroup.GET("/google/callback", r.oauthHandler.Callback, r.access.Require(public))

		authGroup.POST("/logout", r.authHandler.Logout, r.access.Require(authenticated))
		authGroup.POST("/logout-all", r.authHandler.LogoutAll, r.access.Require(authenticated))

		authGroup.GET("/me", r.authHandler.Me, r.access.Require(authenticated))
		authGroup.GET("/sessions", r.authHandler.Sessions, r.access.Require(authenticated))
		authGroup.GET("/ws-token", r.authHandler.WebSocketToken, r.access.Require(authenticated))
	}
}
