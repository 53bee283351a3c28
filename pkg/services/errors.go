package services

import (
	"github.com/pkg/errors"

	"PetPal/pkg/validation"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFoundOrForbidden covers both a missing conversation and one the
	// caller is not part of, so callers cannot probe for existence.
	ErrNotFoundOrForbidden = errors.New("conversation not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type ValidationError = validation.Error

// AuthError is an authentication failure with a client-safe reason.
// errors.Is(err, ErrUnauthenticated) holds for every AuthError.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

func (e *AuthError) Is(target error) bool { return target == ErrUnauthenticated }

func unauthenticated(reason string) error {
	return &AuthError{Reason: reason}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
