package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher_CostValidation(t *testing.T) {
	// Cost 0 falls back to the bcrypt default.
	hasher, err := NewPasswordHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)

	hasher, err = NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, hasher.cost)

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	_, err = NewPasswordHasher(-1)
	assert.Error(t, err)
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, IsHash(hash))

	assert.True(t, hasher.Verify("correct horse battery staple", hash))
	assert.False(t, hasher.Verify("wrong password", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestPasswordHasher_HashesAreSalted(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("samepassword")
	require.NoError(t, err)
	second, err := hasher.Hash("samepassword")
	require.NoError(t, err)

	// Same plaintext, different salts, different hashes: equality checks
	// against a stored hash can never work, only Verify can.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("samepassword", first))
	assert.True(t, hasher.Verify("samepassword", second))
}

func TestIsHash(t *testing.T) {
	assert.True(t, IsHash("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"))
	assert.True(t, IsHash("$2b$12$abcdefghijklmnopqrstuv"))
	assert.True(t, IsHash("$2y$10$abcdefghijklmnopqrstuv"))

	assert.False(t, IsHash("plaintext password"))
	assert.False(t, IsHash(""))
	assert.False(t, IsHash("$1$md5crypt"))
}
