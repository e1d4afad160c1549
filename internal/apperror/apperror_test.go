package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("task", 42)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "task not found with id 42", err.Error())
	assert.Nil(t, err.Fields)
}

func TestValidationFailed_CarriesFieldMap(t *testing.T) {
	err := ValidationFailed(map[string]string{
		"name":  "Name is required",
		"email": "Invalid email format",
	})

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Name is required", err.Fields["name"])
	assert.Equal(t, "Invalid email format", err.Fields["email"])
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf("%w", ...).
	// errors.Is must still reach the sentinel through the chain.
	wrapped := fmt.Errorf("creating user: %w", DuplicateEmail())

	assert.True(t, errors.Is(wrapped, ErrConflict))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "Email already exists", appErr.Message)
}

func TestConflictConstructors(t *testing.T) {
	assert.Equal(t, "Email already exists", DuplicateEmail().Message)
	assert.Equal(t, "Cannot delete user with existing tasks", UserHasTasks().Message)
	assert.True(t, errors.Is(UserHasTasks(), ErrConflict))
}

func TestMalformedInput_DistinctFromValidation(t *testing.T) {
	err := MalformedInput()

	assert.True(t, errors.Is(err, ErrMalformed))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Invalid JSON", err.Message)
}
