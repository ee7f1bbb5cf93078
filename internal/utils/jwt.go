package utils

import (
	"errors" // sentinel error for any form of token rejection
	"time"   // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidAccessToken is returned for every kind of bearer token
// rejection: bad signature, wrong algorithm, malformed payload, missing
// claims or expiry in the past.  Callers get no hint which check failed.
var ErrInvalidAccessToken = errors.New("invalid access token")

// AccessToken represents a signed JWT bearer token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and presented
// in the Authorization header on subsequent requests; expiry is the only
// invalidation mechanism — nothing is tracked server side.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Identity is the account identity recovered from a valid bearer token.
type Identity struct {
	AccountID uint64 // subject claim
	Email     string // email claim
	Role      string // role claim
}

// NewAccessToken builds and signs an HS256 JWT for an account.  It takes
// the signing secret, the account ID, email and role, and a TTL in
// minutes.  The JWT includes standard claims: subject (sub), email, role,
// expiration (exp) and issued at (iat).
func NewAccessToken(secret string, accountID uint64, email, role string, ttlMin int) (AccessToken, error) {
	// Calculate the expiration time by adding the TTL to the current UTC time.
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   accountID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Sign the token with the provided secret and obtain the string form.
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ValidateAccessToken parses and verifies a bearer token and returns the
// embedded identity.  Verification fails closed: signature mismatch, an
// unexpected signing method, a malformed payload, missing claims or a
// breached expiry all collapse into ErrInvalidAccessToken so that no
// partially trusted identity ever escapes.
func ValidateAccessToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.  Without
		// this check a token signed with "none" or an RSA public key could
		// slip through.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAccessToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidAccessToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidAccessToken
	}
	// jwt.Parse already rejected expired tokens via the exp claim; what
	// remains is pulling out the identity claims with strict typing.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return Identity{}, ErrInvalidAccessToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return Identity{}, ErrInvalidAccessToken
	}
	role, _ := claims["role"].(string)
	return Identity{AccountID: uint64(sub), Email: email, Role: role}, nil
}
