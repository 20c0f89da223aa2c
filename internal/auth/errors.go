package auth

import "errors"

// ErrBadFormat is returned when a student identifier fails the shape check.
// The store is never queried in that case.
var ErrBadFormat = errors.New("invalid student id format")

// ErrInvalidCredentials covers a lookup that did not match exactly one row.
var ErrInvalidCredentials = errors.New("invalid identifier or password")

// ErrStoreUnavailable marks a connection or query failure, kept distinct
// from a credential failure.
var ErrStoreUnavailable = errors.New("credential store unavailable")
