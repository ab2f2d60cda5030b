// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a single authorized login. The opaque Token is the
// bearer credential carried by the client on every request; it is valid
// only while the session has not expired and the owning account is active.
type Session struct {
	ID             uuid.UUID // The unique ID for this specific session record.
	UserID         uuid.UUID // Links this session to the User it belongs to.
	Token          string    // High-entropy opaque bearer token. Unique across all live sessions.
	Remember       bool      // Selects the long lifetime at creation time ("remember me").
	ExpiresAt      time.Time // Absolute expiry; never extended after creation.
	LastActivityAt time.Time // Rolling timestamp, refreshed on every successful validation.
	UserAgent      string    // Optional client metadata captured at login.
	IPAddress      string    // Optional source address captured at login.
	CreatedAt      time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

// Expired reports whether the session is past its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
