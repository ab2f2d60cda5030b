// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType identifies an external identity provider.
type ProviderType string

const (
	// ProviderGoogle indicates Google as the federated identity provider.
	ProviderGoogle ProviderType = "google"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}

// IsValid checks if the ProviderType is a valid value.
func (p ProviderType) IsValid() bool {
	return p == ProviderGoogle
}

// ProviderLink records that an external provider identity is bound to a
// local account. A (provider, providerUserID) pair maps to at most one
// user, and a user holds at most one link per provider.
type ProviderLink struct {
	ID             uuid.UUID    // The unique ID for this specific link record.
	UserID         uuid.UUID    // The local account this provider identity belongs to.
	Provider       ProviderType // The external provider, e.g. "google".
	ProviderUserID string       // The provider-assigned subject id (e.g. Google's 'sub' claim).
	Email          string       // The verified email asserted by the provider at link time.
	Name           string       // Display name asserted by the provider.
	Picture        string       // Optional avatar URL asserted by the provider.
	CreatedAt      time.Time    // Timestamp of when this provider was linked to the account.
}
