package security

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationToken(t *testing.T) {
	token, err := GenerateVerificationToken()
	require.NoError(t, err)

	// 32 random bytes come out as 64 hex characters
	assert.Len(t, token, 64)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)

	other, err := GenerateVerificationToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashToken("other-token"))
	assert.NotContains(t, h1, "some-token")
}

func TestTokenMatches(t *testing.T) {
	token, err := GenerateVerificationToken()
	require.NoError(t, err)

	stored := HashToken(token)

	assert.True(t, TokenMatches(token, stored))
	assert.False(t, TokenMatches("wrong", stored))
	assert.False(t, TokenMatches("", stored))
}
