// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"pentrack/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RequestCodeInput defines the data required to request a login code.
type RequestCodeInput struct {
	Email string
}

// VerifyCodeInput defines the data required to redeem a login code.
type VerifyCodeInput struct {
	Email     string
	Code      string
	Remember  bool
	UserAgent string
	IPAddress string
}

// --- Output DTOs ---

// RequestCodeOutput reports how long the issued code remains valid.
type RequestCodeOutput struct {
	ExpiresIn int // seconds
}

// LoginOutput returns the established session after a successful login.
type LoginOutput struct {
	Session *entity.Session
	User    *entity.User
}

// WebSocketTokenOutput carries a short-lived token for the realtime handshake.
type WebSocketTokenOutput struct {
	Token     string
	ExpiresIn int // seconds
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// RequestLoginCode issues a one-time code and emails it to the address.
	// Requesting a code for an email with no account fails with the
	// user-not-found error.
	RequestLoginCode(ctx context.Context, input RequestCodeInput) (*RequestCodeOutput, error)

	// VerifyLoginCode redeems a code and establishes a session.
	VerifyLoginCode(ctx context.Context, input VerifyCodeInput) (*LoginOutput, error)

	// CurrentUser loads the profile behind an authenticated session.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// WebSocketToken mints a short-lived JWT for the realtime handshake.
	WebSocketToken(ctx context.Context, userID uuid.UUID) (*WebSocketTokenOutput, error)
}
