// Package repository defines error types that are reused across the
// account repository. These sentinel values allow higher layers such as
// the auth service to distinguish between different failure scenarios
// without inspecting driver-specific errors. For example, ErrEmailExists
// signals a duplicate signup, while ErrTokenCollision reports that a
// freshly generated opaque token landed on an already-occupied unique
// index and should be regenerated.
package repository

import "errors"

// ErrNotFound is returned when no account row matches the given
// id, email or token. Lookups never expose sql.ErrNoRows directly.
var ErrNotFound = errors.New("account not found")

// ErrEmailExists is returned when an insert collides with the unique
// index on normalized email. The service translates this into its
// Conflict outcome; accounts are never merged.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenCollision is returned when a verification or reset token
// write violates a token unique index. With 256-bit random tokens this
// is practically unreachable, but the store refuses to assume it and
// callers regenerate the token instead.
var ErrTokenCollision = errors.New("token already in use")
