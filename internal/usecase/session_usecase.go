// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"pentrack/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateSessionInput carries the request context captured at login time.
type CreateSessionInput struct {
	UserID    uuid.UUID
	Remember  bool
	UserAgent string
	IPAddress string
}

// SessionUsecase defines the interface for session management operations.
// Validate is the single choke point every authenticated request passes through.
type SessionUsecase interface {
	// Create establishes a new session and returns it with the bearer token set.
	Create(ctx context.Context, input CreateSessionInput) (*entity.Session, error)

	// Validate resolves a bearer token to its user, enforcing expiry and
	// account status, and rolling the session's last-activity timestamp.
	Validate(ctx context.Context, token string) (*entity.User, *entity.Session, error)

	// Revoke terminates the session behind the given token.
	Revoke(ctx context.Context, token string) error

	// RevokeAll terminates every session belonging to the user.
	RevokeAll(ctx context.Context, userID uuid.UUID) error

	// ListActive returns the user's live sessions, most recent first.
	ListActive(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// SweepExpired deletes expired sessions and codes, returning counts.
	SweepExpired(ctx context.Context) (sessions int64, codes int64, err error)
}
