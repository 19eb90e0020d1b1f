// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for one-way hashing and verification.
// It is used for login passwords, password-reset tokens, and SMS one-time
// codes alike. Implementations must be stateless and safe for concurrent use.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext value.
	Hash(plaintext string) (string, error)

	// Check compares a plaintext value with a hash to see if they match.
	Check(plaintext, hash string) bool
}
