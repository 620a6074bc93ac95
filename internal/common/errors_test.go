package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError_NilWhenNoRules(t *testing.T) {
	require.NoError(t, NewValidationError())
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("username must be at least 3 characters", "email is invalid")
	require.Error(t, err)

	wrapped := fmt.Errorf("register: %w", err)
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.False(t, errors.Is(wrapped, ErrConflict))

	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Len(t, ve.Rules, 2)
	assert.Contains(t, err.Error(), "email is invalid")
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation rules", NewValidationError("a", "b"), "a; b"},
		{"score", fmt.Errorf("complete: %w", ErrInvalidScore), "score is out of range for this lab"},
		{"conflict", fmt.Errorf("x: %w", ErrConflict), "username or email is already taken"},
		{"credentials", ErrInvalidCredentials, "invalid username or password"},
		{"disabled", ErrAccountDisabled, "this account is disabled"},
		{"unauthenticated", ErrUnauthenticated, "please log in first"},
		{"not found", ErrNotFound, "not found"},
		{"locked", fmt.Errorf("start: %w", ErrLabLocked), "this lab is locked"},
		{"storage", ErrStorage, "changes could not be saved"},
		{"unknown", errors.New("boom"), "unexpected error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.err))
		})
	}
}
