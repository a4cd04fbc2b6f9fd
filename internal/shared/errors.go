package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFields indicates a request lacked required input.
	ErrMissingFields = errors.New("missing required fields")
	// ErrValidation indicates input was present but not acceptable.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness rule was violated.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized indicates the caller could not be authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable indicates the storage collaborator failed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

// UserSafeMessage returns a message suitable for API clients. Authentication
// failures collapse into one message so callers cannot tell an expired token
// from a forged one.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, ErrUnauthorized):
		return "authentication required"
	case errors.Is(err, ErrForbidden):
		return "you are not allowed to perform this action"
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err.Error()
	default:
		return "internal error"
	}
}
