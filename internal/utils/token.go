package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"       // secure random number generation
	"encoding/base64"   // URL-safe encoding of random bytes
)

// opaqueTokenBytes is the number of random bytes behind a verification or
// reset token.  32 bytes gives 256 bits of entropy, which makes guessing a
// live token infeasible within its validity window.
const opaqueTokenBytes = 32

// NewOpaqueToken returns a cryptographically random, URL‑safe token used
// for email verification and password reset links.  The token is pure
// randomness: it carries no account reference, and the store resolves it
// back to a row by lookup.  32 random bytes encode to a 43 character
// string under unpadded base64url.
func NewOpaqueToken() (string, error) {
	// Allocate a slice and fill it with secure random data.  rand.Read
	// returns an error only if the system source of randomness fails.
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// Encode without padding so tokens stay clean in URLs and emails.
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
