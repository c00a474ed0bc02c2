// Package common defines shared constants and sentinel errors used across
// the checkpay server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Storage failures (database unreachable, constraint violations, etc.).
	ErrorStorage = errors.New("storage error")

	// Token errors. ErrInvalidToken covers tokens that cannot be decoded or
	// whose signature does not verify.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrUnknownSubject = errors.New("unknown token subject")
)

// IsAuthError reports whether err is one of the token or credential
// failures that must be reported to callers as "unauthenticated".
func IsAuthError(err error) bool {
	return errors.Is(err, ErrorUnauthorized) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUnknownSubject)
}
