package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken_ShapeAndEntropy(t *testing.T) {
	t.Parallel()

	tok, err := NewOpaqueToken()
	require.NoError(t, err)

	// 32 bytes -> 43 chars of unpadded base64url.
	assert.Len(t, tok, 43)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err, "token must be URL-safe base64")
	assert.Len(t, raw, opaqueTokenBytes)
}

func TestNewOpaqueToken_NoRepeats(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := NewOpaqueToken()
		require.NoError(t, err)
		require.False(t, seen[tok], "token repeated after %d draws", i)
		seen[tok] = true
	}
}
