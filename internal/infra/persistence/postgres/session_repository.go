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

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// A token collision is astronomically unlikely with 256 bits of
			// entropy; surface it as a conflict rather than retrying here.
			return domainerrors.ErrConflict.WrapMessage("session token collision")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByToken retrieves a session by its opaque bearer token.
func (repo *sessionRepository) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("token = ?", token).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token")
	}

	return toSessionDomain(&sessionM), nil
}

// FindActiveByUserID retrieves all non-expired sessions owned by a user,
// most recently active first.
func (repo *sessionRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var sessionMs []model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("last_activity_at DESC").
		Find(&sessionMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find active sessions")
	}

	sessions := make([]*entity.Session, 0, len(sessionMs))
	for i := range sessionMs {
		sessions = append(sessions, toSessionDomain(&sessionMs[i]))
	}

	return sessions, nil
}

// UpdateLastActivity refreshes the rolling activity timestamp.
func (repo *sessionRepository) UpdateLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("last_activity_at", at).Error
	if err != nil {
		return errors.Wrap(err, "failed to update session activity")
	}

	return nil
}

// DeleteByToken removes one session. Deleting an absent token is not an error.
func (repo *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	err := repo.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.SessionModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete session by token")
	}

	return nil
}

// DeleteByUserID removes every session owned by the user.
func (repo *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.SessionModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete sessions by user")
	}

	return nil
}

// DeleteExpired removes all sessions past their absolute expiry.
func (repo *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired sessions")
	}

	return result.RowsAffected, nil
}

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:             data.ID,
		UserID:         data.UserID,
		Token:          data.Token,
		Remember:       data.Remember,
		ExpiresAt:      data.ExpiresAt,
		LastActivityAt: data.LastActivityAt,
		UserAgent:      data.UserAgent,
		IPAddress:      data.IPAddress,
		CreatedAt:      data.CreatedAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:             data.ID,
		UserID:         data.UserID,
		Token:          data.Token,
		Remember:       data.Remember,
		ExpiresAt:      data.ExpiresAt,
		LastActivityAt: data.LastActivityAt,
		UserAgent:      data.UserAgent,
		IPAddress:      data.IPAddress,
		CreatedAt:      data.CreatedAt,
	}
}
