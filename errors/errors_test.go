package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, PersistenceError, "storage operation failed")

	assert.Equal(t, PersistenceError, wrappedErr.Type)
	assert.Equal(t, "storage operation failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 500, wrappedErr.HTTPStatus)
	assert.Equal(t, originalErr, wrappedErr.Raw)

	assert.Nil(t, Wrap(nil, PersistenceError, "ignored"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Feedback", "abc")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Feedback not found", err.Message)
	assert.Equal(t, "ID: abc", err.Detail)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed(CodeInvalidEmail, "Invalid email format.")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, CodeInvalidEmail, err.Code)
	assert.Equal(t, "Invalid email format.", err.Message)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Equal(t, "VALIDATION_ERROR: Invalid email format.", err.Error())
}

func TestNewPersistenceError(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewPersistenceError("save", cause)

	assert.Equal(t, PersistenceError, err.Type)
	assert.Equal(t, "Failed to save feedback", err.Message)
	assert.Equal(t, 500, err.GetHTTPStatus())
	assert.True(t, stderrors.Is(err, cause))
}

func TestRateLimitExceeded(t *testing.T) {
	err := RateLimitExceeded("Too many requests", 30)
	assert.Equal(t, RateLimitError, err.Type)
	assert.Equal(t, 429, err.GetHTTPStatus())
	assert.Equal(t, "Retry after 30 seconds", err.Detail)
}

func TestAsAndIsType(t *testing.T) {
	base := NotFound("Feedback", "x")
	wrapped := fmt.Errorf("vote: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, IsType(wrapped, NotFoundError))
	assert.False(t, IsType(wrapped, ValidationError))

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestGetHTTPStatusFallsBackToType(t *testing.T) {
	err := &AppError{Type: ConflictError, Message: "stale"}
	assert.Equal(t, 409, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE"}
	assert.Equal(t, 500, err.GetHTTPStatus())
}
