package service

import "errors"

// Sentinel outcomes of the auth service. These are expected results, not
// faults: handlers translate them into HTTP statuses, and anything that is
// not one of these is a real internal error (store unavailable, hashing
// failure) and surfaces as 500.
var (
	// ErrEmailExists: a signup hit an email that already has an account.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable so login cannot be
	// used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified: the password was correct but email ownership
	// has not been proven yet.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidToken: a verification or reset token that is unknown or
	// was already consumed.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenExpired: the token matched a row but its window has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrValidation wraps password policy violations; the concrete rule
	// is carried in the wrapped message.
	ErrValidation = errors.New("validation failed")
)
