// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"pentrack/internal/domain/entity"
)

// BeginAuthInput defines the data required to start a federated login.
type BeginAuthInput struct {
	Role entity.Role
}

// BeginAuthOutput carries the provider consent URL the client is sent to.
type BeginAuthOutput struct {
	RedirectURL string
	State       string
}

// CompleteAuthInput defines the callback parameters from the provider.
type CompleteAuthInput struct {
	State     string
	Code      string
	UserAgent string
	IPAddress string
}

// CompleteAuthOutput returns the established session plus resolution flags.
type CompleteAuthOutput struct {
	Session        *entity.Session
	User           *entity.User
	IsNewUser      bool
	LinkedExisting bool
}

// OAuthUsecase defines the interface for federated login operations.
type OAuthUsecase interface {
	// BeginAuth records a pending state entry and builds the consent URL.
	// Only roles flagged as federated-only may start the flow.
	BeginAuth(ctx context.Context, input BeginAuthInput) (*BeginAuthOutput, error)

	// CompleteAuth redeems the callback: claims the state entry, exchanges
	// the code, verifies the identity, resolves or provisions the account,
	// and establishes a session.
	CompleteAuth(ctx context.Context, input CompleteAuthInput) (*CompleteAuthOutput, error)
}
