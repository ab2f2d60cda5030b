// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// CodeHasher defines the interface for one-time-code hashing and verification.
// Codes are short-lived and looked up by value, so the hash must be deterministic
// rather than salted.
type CodeHasher interface {
	// Hash produces the stored digest of a plaintext code.
	Hash(code string) string

	// Check compares a plaintext code with a stored digest in constant time.
	Check(code, hash string) bool
}

// CodeGenerator produces the plaintext one-time codes handed to users.
type CodeGenerator interface {
	// Generate returns a new numeric code of the configured length,
	// drawn from a cryptographic source.
	Generate() (string, error)
}
