// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleAdmin indicates the platform super administrator.
	RoleAdmin Role = "admin"
	// RoleRegionalAdmin indicates a company regional administrator.
	RoleRegionalAdmin Role = "regional_admin"
	// RolePentester indicates a company penetration tester.
	RolePentester Role = "pentester"
	// RoleClient indicates a client-company account.
	RoleClient Role = "client"
	// RolePartner indicates a partner-company account.
	RolePartner Role = "partner"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRegionalAdmin, RolePentester, RoleClient, RolePartner:
		return true
	default:
		return false
	}
}

// FederatedOnly reports whether the role must authenticate through the
// federated OAuth flow. Federated-only roles can never request a one-time
// code, and no other role may complete the OAuth flow.
func (r Role) FederatedOnly() bool {
	switch r {
	case RoleRegionalAdmin, RolePentester:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings converts Roles to []string for log and error messages.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}
