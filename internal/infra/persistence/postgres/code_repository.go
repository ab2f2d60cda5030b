package postgres

import (
	"context"
	"time"

	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/domain/repository"
	"pentrack/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// codeRepository implements the domain.CodeRepository interface using GORM.
type codeRepository struct {
	db *gorm.DB
}

// NewCodeRepository is the constructor for codeRepository.
func NewCodeRepository(db *gorm.DB) repository.CodeRepository {
	return &codeRepository{db: db}
}

// Create persists a new code record.
func (repo *codeRepository) Create(ctx context.Context, code *entity.OneTimeCode) error {
	codeM := fromCodeDomain(code)

	if err := repo.db.WithContext(ctx).Create(codeM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create one-time code")
	}

	code.ID = codeM.ID
	code.CreatedAt = codeM.CreatedAt

	return nil
}

// FindLatestUnconsumed retrieves the most recent unconsumed code for the
// (email, purpose) pair.
func (repo *codeRepository) FindLatestUnconsumed(ctx context.Context, email string, purpose entity.CodePurpose) (*entity.OneTimeCode, error) {
	var codeM model.OneTimeCodeModel
	err := repo.db.WithContext(ctx).
		Where("email = ? AND purpose = ? AND consumed_at IS NULL", email, purpose.String()).
		Order("created_at DESC").
		First(&codeM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCodeNotFound
		}

		return nil, errors.Wrap(err, "failed to find unconsumed code")
	}

	return toCodeDomain(&codeM), nil
}

// CountSince counts codes issued to the email after the given instant.
func (repo *codeRepository) CountSince(ctx context.Context, email string, since time.Time) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.OneTimeCodeModel{}).
		Where("email = ? AND created_at > ?", email, since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count recent codes")
	}

	return count, nil
}

// DeleteByEmailAndPurpose invalidates all prior codes for the pair.
func (repo *codeRepository) DeleteByEmailAndPurpose(ctx context.Context, email string, purpose entity.CodePurpose) error {
	err := repo.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, purpose.String()).
		Delete(&model.OneTimeCodeModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete codes by email and purpose")
	}

	return nil
}

// DeleteByID removes a single code record.
func (repo *codeRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.OneTimeCodeModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete code")
	}

	return nil
}

// IncrementAttempts bumps the failed-attempt counter by one.
func (repo *codeRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.OneTimeCodeModel{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return errors.Wrap(err, "failed to increment attempts")
	}

	return nil
}

// Consume marks the code consumed with a single conditional update. The
// "consumed_at IS NULL" guard makes the operation atomic: concurrent
// verifications race on the same row, and only one update reports a row
// affected.
func (repo *codeRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OneTimeCodeModel{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume code")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCodeAlreadyConsumed
	}

	return nil
}

// DeleteExpired removes all codes past expiry.
func (repo *codeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.OneTimeCodeModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired codes")
	}

	return result.RowsAffected, nil
}

// toCodeDomain converts a GORM OneTimeCodeModel to a domain OneTimeCode entity.
func toCodeDomain(data *model.OneTimeCodeModel) *entity.OneTimeCode {
	if data == nil {
		return nil
	}

	return &entity.OneTimeCode{
		ID:         data.ID,
		Email:      data.Email,
		CodeHash:   data.CodeHash,
		Purpose:    entity.CodePurpose(data.Purpose),
		ExpiresAt:  data.ExpiresAt,
		Attempts:   data.Attempts,
		ConsumedAt: data.ConsumedAt,
		UserID:     data.UserID,
		CreatedAt:  data.CreatedAt,
	}
}

// fromCodeDomain converts a domain OneTimeCode entity to a GORM OneTimeCodeModel.
func fromCodeDomain(data *entity.OneTimeCode) *model.OneTimeCodeModel {
	if data == nil {
		return nil
	}

	return &model.OneTimeCodeModel{
		ID:         data.ID,
		Email:      data.Email,
		CodeHash:   data.CodeHash,
		Purpose:    data.Purpose.String(),
		ExpiresAt:  data.ExpiresAt,
		Attempts:   data.Attempts,
		ConsumedAt: data.ConsumedAt,
		UserID:     data.UserID,
		CreatedAt:  data.CreatedAt,
	}
}
