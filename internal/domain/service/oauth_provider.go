package service

import (
	"context"

	"pentrack/internal/domain/entity"
)

// OAuthUser represents user information returned by an OAuth provider.
type OAuthUser struct {
	Subject       string              // Provider-specific stable user ID (e.g., Google's 'sub' claim)
	Email         string              // User's email address
	EmailVerified bool                // Whether the email is verified by the provider
	GivenName     string              // User's given name
	FamilyName    string              // User's family name
	Picture       string              // URL to user's profile picture
	HostedDomain  string              // Workspace domain the account belongs to, if any
	Provider      entity.ProviderType // The OAuth provider
}

// OAuthProvider defines the interface for the authorization-code flow
// against a federated identity provider.
type OAuthProvider interface {
	// AuthorizationURL builds the provider consent URL carrying the
	// given opaque state and nonce.
	AuthorizationURL(state, nonce string) string

	// ExchangeCode swaps an authorization code for the provider's ID
	// token and returns the verified user information. The nonce must
	// match the one bound to the originating state entry.
	ExchangeCode(ctx context.Context, code, nonce string) (*OAuthUser, error)

	// Provider returns the provider type this instance serves.
	Provider() entity.ProviderType
}
