// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
	"time"

	"pentrack/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session matches the given token or id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the operations for session persistence.
// Sessions are the single source of truth for "is this caller logged in";
// every protected request resolves its bearer token through this contract.
type SessionRepository interface {
	// Create persists a new session. The token column carries a uniqueness
	// constraint, so two live sessions can never share a token.
	Create(ctx context.Context, session *entity.Session) error

	// FindByToken retrieves a session by its opaque bearer token.
	FindByToken(ctx context.Context, token string) (*entity.Session, error)

	// FindActiveByUserID retrieves all non-expired sessions owned by a user,
	// most recently active first.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// UpdateLastActivity refreshes the rolling activity timestamp. Last
	// write wins under concurrent validations of the same token.
	UpdateLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error

	// DeleteByToken removes one session. Deleting an absent token is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID removes every session owned by the user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all sessions past their absolute expiry and
	// returns how many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
