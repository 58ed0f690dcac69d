package errors

import "errors"

// ErrNotConfigured means no provider credentials were supplied.
var ErrNotConfigured = errors.New("payment provider not configured")
