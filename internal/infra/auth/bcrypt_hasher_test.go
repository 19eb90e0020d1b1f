package auth

import (
	"testing"

	"gatekit/config"

	"github.com/stretchr/testify/assert"
)

func newTestHasher() *bcryptHasher {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 5}}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newTestHasher()

	password := "pass1"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := newTestHasher()
	password := "correct horse battery staple"

	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	// Test correct password
	assert.True(t, hasher.Check(password, hash))

	// Test incorrect password
	assert.False(t, hasher.Check("wrong", hash))

	// Test empty password
	assert.False(t, hasher.Check("", hash))

	// Test with invalid hash
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := newTestHasher()

	first, err := hasher.Hash("same-input")
	assert.NoError(t, err)
	second, err := hasher.Hash("same-input")
	assert.NoError(t, err)

	// Same plaintext, different salts, different hashes.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("same-input", first))
	assert.True(t, hasher.Check("same-input", second))
}

func TestBcryptHasher_HashesSMSCodes(t *testing.T) {
	hasher := newTestHasher()

	// Short numeric codes go through the same one-way path as passwords.
	hash, err := hasher.Hash("048271")
	assert.NoError(t, err)
	assert.True(t, hasher.Check("048271", hash))
	assert.False(t, hasher.Check("048272", hash))
}
