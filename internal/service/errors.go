package service

import "errors"

var (
	// ErrMissingCredentials is returned when a login omits name or password
	ErrMissingCredentials = errors.New("name and password are required")
	// ErrInvalidCredentials is returned when a login does not match
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a request that can never succeed as sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
