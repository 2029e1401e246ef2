package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("loading class: %w", NewNotFoundError("class", "c1"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAccessDenied))
	assert.Equal(t, "loading class: class c1 not found", err.Error())
}

func TestBackendErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendError("get flashcard", cause)

	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	assert.True(t, errors.Is(err, cause))
}

func TestValidationErrorFields(t *testing.T) {
	err := NewValidationError(map[string]string{
		"name":  "name is required",
		"email": "email is required",
	})

	assert.True(t, Is(err, ErrNotFound, ErrValidationFailed))
	assert.Equal(t, "email is required; name is required", err.Error())
	assert.Equal(t, map[string]string{
		"name":  "name is required",
		"email": "email is required",
	}, FieldErrors(err))
	assert.Nil(t, FieldErrors(NewAccessDeniedError("no")))
}
