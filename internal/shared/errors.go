package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation marks malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrEmailTaken occurs when an account already exists for the email.
	ErrEmailTaken = errors.New("user already exists")
)
