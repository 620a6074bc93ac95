// Package common defines shared sentinel errors and small helpers used across
// the store, services and client layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Input errors.
	ErrValidation   = errors.New("validation error")
	ErrInvalidScore = errors.New("invalid score")

	// Lookup / uniqueness errors.
	ErrNotFound  = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrLabLocked     = errors.New("lab is locked")
	ErrAlreadySolved = errors.New("challenge already solved")
	ErrWrongFlag     = errors.New("wrong flag")

	// Session errors.
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrForbidden          = errors.New("permission denied")

	// Persistence errors. Treated as soft failures by the domain store.
	ErrStorage = errors.New("storage error")
)

// ValidationError lists every rule an input violated.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Rules []string
}

// NewValidationError returns nil when no rules were violated.
func NewValidationError(rules ...string) error {
	if len(rules) == 0 {
		return nil
	}
	return &ValidationError{Rules: rules}
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Rules, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Message maps an error to a short text suitable for showing to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return strings.Join(ve.Rules, "; ")
	case errors.Is(err, ErrInvalidScore):
		return "score is out of range for this lab"
	case errors.Is(err, ErrConflict):
		return "username or email is already taken"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, ErrAccountDisabled):
		return "this account is disabled"
	case errors.Is(err, ErrUnauthenticated):
		return "please log in first"
	case errors.Is(err, ErrLabLocked):
		return "this lab is locked"
	case errors.Is(err, ErrAlreadySolved):
		return "you have already solved this challenge"
	case errors.Is(err, ErrWrongFlag):
		return "wrong flag"
	case errors.Is(err, ErrForbidden):
		return "admin rights required"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrInvalidToken):
		return "session expired, please log in again"
	case errors.Is(err, ErrStorage):
		return "changes could not be saved"
	case errors.Is(err, ErrValidation):
		return "invalid input"
	default:
		return "unexpected error"
	}
}
