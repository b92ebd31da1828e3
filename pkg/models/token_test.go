package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortalToken(t *testing.T) {
	t.Parallel()

	token, err := NewPortalToken()
	require.NoError(t, err)

	// 24 bytes encode to 32 base64url characters
	assert.Len(t, token, 32)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestNewPortalToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)

	for range 100 {
		token, err := NewPortalToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}
