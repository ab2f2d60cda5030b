package service

import (
	"time"

	"pentrack/internal/domain/entity"
)

// OAuthState is the server-side record bound to one pending OAuth flow.
type OAuthState struct {
	Role      entity.Role // Role the caller asked to log in as
	Nonce     string      // Nonce echoed inside the provider ID token
	CreatedAt time.Time
}

// Expired reports whether the state entry has outlived the given TTL.
func (s OAuthState) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// StateStore holds pending OAuth state entries between the redirect and
// the callback. Implementations must make TakeOnce atomic: each key can
// be claimed by at most one caller. The interface is the seam for a
// shared backing store when the service runs multi-instance.
type StateStore interface {
	// Put records a pending state entry under its opaque key.
	Put(key string, state OAuthState)

	// TakeOnce atomically retrieves and deletes the entry for key.
	// The second return is false when the key is absent or already taken.
	TakeOnce(key string) (OAuthState, bool)

	// SweepExpired removes entries older than the TTL and returns the count.
	SweepExpired(now time.Time, ttl time.Duration) int
}
