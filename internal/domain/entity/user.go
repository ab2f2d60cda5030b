// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record of the platform. Every authentication
// flow (one-time code or federated) resolves to exactly one User.
type User struct {
	ID              uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Email           string    // The user's primary contact email, used as the login identifier. Unique.
	Phone           *string   // Optional phone number. Unique when present.
	FirstName       string    // The user's given name.
	LastName        string    // The user's family name.
	Role            Role      // The user's single platform role. Fixed at account creation.
	Status          AccountStatus
	EmailVerified   bool       // Whether control of the email address has been proven.
	EmailVerifiedAt *time.Time // When the email was verified. Nil if never.
	ProfileImage    string     // Optional avatar URL, usually sourced from a federated provider.
	CompanyEmail    string     // Company address for staff roles authenticated via OAuth.
	CompanyDomain   string     // Domain of CompanyEmail; restricts which roles may federate.
	LastLoginAt     *time.Time // Timestamp of the most recent successful login.
	LastLoginIP     string     // Source address of the most recent successful login.
	CreatedAt       time.Time  // Timestamp of when this account was created.
	UpdatedAt       time.Time  // Timestamp of the last modification to this user's data.
	DeletedAt       *time.Time // Soft-deletion marker. A deleted user is never hard-removed.
}

// FullName joins the user's given and family names for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}

	return u.FirstName + " " + u.LastName
}

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus string

const (
	// StatusPending indicates an account created but not yet activated.
	StatusPending AccountStatus = "pending"
	// StatusActive indicates a normal, usable account.
	StatusActive AccountStatus = "active"
	// StatusInactive indicates an account disabled without sanction.
	StatusInactive AccountStatus = "inactive"
	// StatusSuspended indicates an account blocked by an administrator.
	StatusSuspended AccountStatus = "suspended"
	// StatusDeleted indicates a soft-deleted account.
	StatusDeleted AccountStatus = "deleted"
)

// String returns the string representation of the AccountStatus.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid checks if the AccountStatus is a valid value.
func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusSuspended, StatusDeleted:
		return true
	default:
		return false
	}
}
