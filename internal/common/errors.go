// Package common defines shared constants and sentinel errors used across
// the Breathe Pure components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Storage-level errors. Driver failures are wrapped with ErrStorage so
	// the underlying cause stays visible.
	ErrStorage           = errors.New("storage error")
	ErrUnsupportedDriver = errors.New("unsupported storage driver")

	// Decoding of persisted JSON failed.
	ErrParse = errors.New("malformed stored data")

	// User record errors.
	ErrUserExists    = errors.New("user already exists")
	ErrNotFound      = errors.New("not found")
	ErrWrongPassword = errors.New("incorrect password")

	// Input validation errors.
	ErrValidation       = errors.New("validation error")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Access control.
	ErrForbidden = errors.New("forbidden")
)
