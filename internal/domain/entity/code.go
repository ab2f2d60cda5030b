// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose tags what a one-time code may be redeemed for.
type CodePurpose string

const (
	// PurposeLogin indicates a code issued to complete a login challenge.
	PurposeLogin CodePurpose = "login"
)

// String returns the string representation of the CodePurpose.
func (p CodePurpose) String() string {
	return string(p)
}

// IsValid checks if the CodePurpose is a valid value.
func (p CodePurpose) IsValid() bool {
	return p == PurposeLogin
}

// OneTimeCode is a short-lived login challenge delivered out-of-band by
// email. Only the SHA-256 hash of the code is ever stored; the plaintext
// exists solely in the email sent to the user.
type OneTimeCode struct {
	ID         uuid.UUID   // The unique ID for this specific code record.
	Email      string      // The address the code was sent to. Not necessarily a user yet.
	CodeHash   string      // SHA-256 hex digest of the plaintext code.
	Purpose    CodePurpose // What the code may be redeemed for.
	ExpiresAt  time.Time   // Absolute expiry of the challenge.
	Attempts   int         // Failed verification attempts so far.
	ConsumedAt *time.Time  // Set exactly once when the code is redeemed. Nil until used.
	UserID     *uuid.UUID  // The account bound at issue time. Nil if the email had no account.
	CreatedAt  time.Time
}

// Usable reports whether the code can still be redeemed: unconsumed, not
// expired, and under the attempt cap.
func (c *OneTimeCode) Usable(now time.Time, maxAttempts int) bool {
	return c.ConsumedAt == nil && now.Before(c.ExpiresAt) && c.Attempts < maxAttempts
}
