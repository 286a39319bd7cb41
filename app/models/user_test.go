package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("geheim123")
	require.NoError(t, err)
	assert.NotEqual(t, "geheim123", hash)

	assert.True(t, CheckPasswordHash("geheim123", hash))
	assert.False(t, CheckPasswordHash("falsch", hash))
}

func TestUser_IssueAPIKey(t *testing.T) {
	u := &User{Name: "Admin", Email: "admin@regiojobs.de"}

	key, err := u.IssueAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "rj_"))
	assert.True(t, u.HasActiveAPIKey())
	require.NotNil(t, u.APIKeyCreatedAt)

	// The stored hash verifies the plaintext key and nothing else.
	assert.Equal(t, u.APIKeyHash, HashAPIKey(key))
	assert.NotEqual(t, u.APIKeyHash, HashAPIKey("rj_other"))

	// A re-issue invalidates the previous key.
	second, err := u.IssueAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, second)
	assert.Equal(t, u.APIKeyHash, HashAPIKey(second))
}

func TestUser_IsActive(t *testing.T) {
	assert.True(t, (&User{Status: STATUS_ACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_INACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_DISABLED}).IsActive())
}
