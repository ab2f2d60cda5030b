package postgres

import (
	"context"

	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/domain/repository"
	"pentrack/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// providerLinkRepository implements the domain.ProviderLinkRepository interface using GORM.
type providerLinkRepository struct {
	db *gorm.DB
}

// NewProviderLinkRepository is the constructor for providerLinkRepository.
func NewProviderLinkRepository(db *gorm.DB) repository.ProviderLinkRepository {
	return &providerLinkRepository{db: db}
}

// FindByProviderSubject looks a link up by the provider's stable subject identifier.
func (repo *providerLinkRepository) FindByProviderSubject(ctx context.Context, provider entity.ProviderType, subject string) (*entity.ProviderLink, error) {
	var linkM model.ProviderLinkModel
	err := repo.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider.String(), subject).
		First(&linkM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProviderLinkNotFound
		}

		return nil, errors.Wrap(err, "failed to find provider link by subject")
	}

	return toProviderLinkDomain(&linkM), nil
}

// FindByUserAndProvider retrieves a user's link for one provider.
func (repo *providerLinkRepository) FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.ProviderLink, error) {
	var linkM model.ProviderLinkModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider.String()).
		First(&linkM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProviderLinkNotFound
		}

		return nil, errors.Wrap(err, "failed to find provider link by user")
	}

	return toProviderLinkDomain(&linkM), nil
}

// Create persists a new federated link.
func (repo *providerLinkRepository) Create(ctx context.Context, link *entity.ProviderLink) error {
	linkM := fromProviderLinkDomain(link)

	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrProviderAlreadyLinked.WrapMessage("provider identity already linked")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "provider link references missing user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create provider link")
	}

	link.ID = linkM.ID
	link.CreatedAt = linkM.CreatedAt

	return nil
}

// toProviderLinkDomain converts a GORM ProviderLinkModel to a domain ProviderLink entity.
func toProviderLinkDomain(data *model.ProviderLinkModel) *entity.ProviderLink {
	if data == nil {
		return nil
	}

	return &entity.ProviderLink{
		ID:             data.ID,
		UserID:         data.UserID,
		Provider:       entity.ProviderType(data.Provider),
		ProviderUserID: data.ProviderUserID,
		Email:          data.Email,
		Name:           data.Name,
		Picture:        data.Picture,
		CreatedAt:      data.CreatedAt,
	}
}

// fromProviderLinkDomain converts a domain ProviderLink entity to a GORM ProviderLinkModel.
func fromProviderLinkDomain(data *entity.ProviderLink) *model.ProviderLinkModel {
	if data == nil {
		return nil
	}

	return &model.ProviderLinkModel{
		ID:             data.ID,
		UserID:         data.UserID,
		Provider:       data.Provider.String(),
		ProviderUserID: data.ProviderUserID,
		Email:          data.Email,
		Name:           data.Name,
		Picture:        data.Picture,
		CreatedAt:      data.CreatedAt,
	}
}
