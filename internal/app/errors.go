package app

import "errors"

var (
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the principal may not touch the record.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput indicates a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("not found")
)
