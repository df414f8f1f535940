package service

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown email, a wrong
	// password or an unknown token.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when the record does not exist for the user.
	ErrNotFound = errors.New("record not found")
)

// ValidationError is input the backend refuses to store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
