package errors

import "errors"

var (
	// ErrNotFound means no code was ever sent to this email, or the
	// entry was already consumed.
	ErrNotFound = errors.New("no verification code for email")

	ErrMismatch = errors.New("verification code mismatch")

	ErrExpired = errors.New("verification code expired")
)
