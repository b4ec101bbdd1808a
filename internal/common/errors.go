// Package common defines shared constants and sentinel errors used across
// the service, repository and transport layers. Callers should use errors.Is
// to match these values and errors.As for the typed kinds in error.go.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrIntegrity reports that an entity referenced by stored data vanished.
	ErrIntegrity = errors.New("data integrity violation")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrAuthenticationFailed is the only login failure a client ever sees.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Internal login failure reasons. Both match ErrAuthenticationFailed.
	ErrUnknownIdentifier = fmt.Errorf("%w: unknown identifier", ErrAuthenticationFailed)
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrAuthenticationFailed)

	ErrTooManyRequests = errors.New("too many requests")
)
