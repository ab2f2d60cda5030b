// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
	"time"

	"pentrack/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for one-time-code persistence.
var (
	// ErrCodeNotFound is returned when no matching code record exists.
	ErrCodeNotFound = errors.New("one-time code not found")
	// ErrCodeAlreadyConsumed is returned when a conditional consume loses
	// the race against a concurrent verification of the same code.
	ErrCodeAlreadyConsumed = errors.New("one-time code already consumed")
)

// CodeRepository defines the operations for one-time-code persistence.
type CodeRepository interface {
	// Create persists a new code record (hash only, never the plaintext).
	Create(ctx context.Context, code *entity.OneTimeCode) error

	// FindLatestUnconsumed retrieves the most recent unconsumed code for
	// the (email, purpose) pair.
	FindLatestUnconsumed(ctx context.Context, email string, purpose entity.CodePurpose) (*entity.OneTimeCode, error)

	// CountSince counts codes issued to the email after the given instant,
	// consumed or not. Used for the request rate limit.
	CountSince(ctx context.Context, email string, since time.Time) (int64, error)

	// DeleteByEmailAndPurpose invalidates all prior codes for the pair.
	DeleteByEmailAndPurpose(ctx context.Context, email string, purpose entity.CodePurpose) error

	// DeleteByID removes a single code record.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// IncrementAttempts bumps the failed-attempt counter by one.
	IncrementAttempts(ctx context.Context, id uuid.UUID) error

	// Consume marks the code consumed with a single conditional update
	// guarded on "not yet consumed". Exactly one of any set of concurrent
	// calls succeeds; the losers receive ErrCodeAlreadyConsumed.
	Consume(ctx context.Context, id uuid.UUID, at time.Time) error

	// DeleteExpired removes all codes past expiry and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
