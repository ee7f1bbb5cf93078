package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken("super-secret", 42, "user@example.com", "USER", 60)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)

	ident, err := ValidateAccessToken("super-secret", at.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ident.AccountID)
	assert.Equal(t, "user@example.com", ident.Email)
	assert.Equal(t, "USER", ident.Role)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken("super-secret", 42, "user@example.com", "USER", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken("super-secret", at.Token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken("secret-a", 42, "user@example.com", "USER", 60)
	require.NoError(t, err)

	_, err = ValidateAccessToken("secret-b", at.Token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestValidateAccessToken_Tampered(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken("super-secret", 42, "user@example.com", "USER", 60)
	require.NoError(t, err)

	// Flip a character inside the payload segment.
	parts := strings.Split(at.Token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)

	_, err = ValidateAccessToken("super-secret", strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ValidateAccessToken("super-secret", raw)
		assert.ErrorIs(t, err, ErrInvalidAccessToken, "input %q", raw)
	}
}
