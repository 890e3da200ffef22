package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, hasher.Verify(hash, "s3cret-password"))
	assert.False(t, hasher.Verify(hash, "wrong-password"))
	assert.False(t, hasher.Verify("not-a-hash", "s3cret-password"))
}

func TestPasswordHashesDiffer(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	// bcrypt salts every hash
	assert.NotEqual(t, first, second)
}
