// Package common defines shared constants and sentinel errors used across
// the Amanotes client and backend. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input rejected before any store access.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned by lookups only where absence is a failure;
	// plain lookups return a nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks requests that clash with existing state.
	ErrConflict = errors.New("conflict")

	// ErrUserExists is a conflict on signup against an existing local email.
	ErrUserExists = fmt.Errorf("%w: an account with this email already exists", ErrConflict)

	// ErrUserNotFound is returned by login when neither a local account nor
	// the demo account matches.
	ErrUserNotFound = fmt.Errorf("%w: user not found, sign up first or use the demo account", ErrConflict)

	// ErrInvalidCredentials is returned when a stored password does not match.
	ErrInvalidCredentials = errors.New("wrong email or password")

	// ErrTransport wraps store and network failures.
	ErrTransport = errors.New("transport error")

	// ErrUnauthorized is returned where a signed-in user is required.
	ErrUnauthorized = errors.New("unauthorized: sign in first")

	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Validation wraps a human-readable message with ErrValidation.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
