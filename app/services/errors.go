package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("not allowed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignupDisabled     = errors.New("sign up is disabled")
)

// fail wraps an unexpected error with the operation that produced it
func fail(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// invalid wraps a validation failure so that it matches ErrInvalidInput
func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
