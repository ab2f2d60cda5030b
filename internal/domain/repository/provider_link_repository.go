package repository

import (
	"context"
	"errors"

	"pentrack/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProviderLinkNotFound is returned when no federated link matches.
var ErrProviderLinkNotFound = errors.New("provider link not found")

// ProviderLinkRepository defines the operations for federated identity links.
type ProviderLinkRepository interface {
	// FindByProviderSubject looks a link up by the provider's stable
	// subject identifier, the primary match during federated login.
	FindByProviderSubject(ctx context.Context, provider entity.ProviderType, subject string) (*entity.ProviderLink, error)

	// FindByUserAndProvider retrieves a user's link for one provider.
	FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.ProviderLink, error)

	// Create persists a new federated link.
	Create(ctx context.Context, link *entity.ProviderLink) error
}
