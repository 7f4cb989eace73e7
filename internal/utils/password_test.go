package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("secret124", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestCheckPasswordHash_BadHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("secret123", "not-a-bcrypt-hash"))
}
