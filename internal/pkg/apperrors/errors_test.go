package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityErrorsWrapNotFound(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrStudentNotFound, ErrRemarkNotFound, ErrApplicationNotFound, ErrTargetNotFound} {
		assert.ErrorIs(t, err, ErrResourceNotFound)
		assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrResourceNotFound)
	}
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	assert.NoError(t, fe.Validation())
	assert.NoError(t, fe.Conflict())

	fe.Add("email", "This field is required.")
	fe.Add("email", "Enter a valid email address.")
	fe.Merge(FieldErrors{"phone": {"Too long."}})

	err := fe.Validation()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	fields, ok := FieldsOf(fmt.Errorf("service: %w", err))
	require.True(t, ok)
	assert.Equal(t, []string{"email", "phone"}, fields.Fields())
	assert.Len(t, fields["email"], 2)

	conflict := NewFieldConflictError("email", "student with this email already exists.")
	assert.ErrorIs(t, conflict, ErrResourceAlreadyExists)
	assert.False(t, errors.Is(conflict, ErrValidationFailed))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("x: %w", ErrTokenRevoked)
	assert.True(t, Is(err, ErrTokenExpired, ErrTokenInvalid, ErrTokenRevoked))
	assert.False(t, Is(err, ErrTokenExpired))
}
