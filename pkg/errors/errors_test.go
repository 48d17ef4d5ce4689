package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	appErr := ErrInternal("something failed").Wrap(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "something failed")

	wrapped := fmt.Errorf("outer: %w", appErr)
	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInternalError, got.Code)
}

func TestConstructorsCarryHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{ErrValidation("bad"), http.StatusBadRequest},
		{ErrNotFound("product"), http.StatusNotFound},
		{ErrConflict("dup"), http.StatusConflict},
		{ErrDomainRule("rule"), http.StatusBadRequest},
		{ErrInternal(""), http.StatusInternalServerError},
		{ErrServiceUnavailable("mongo"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus, tt.err.Code)
	}
}

func TestErrNotFoundWithID(t *testing.T) {
	appErr := ErrNotFoundWithID("product", "abc123")
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.Contains(t, appErr.Message, "product")
	assert.Equal(t, "abc123", appErr.Details["id"])
}

func TestErrValidationWithFields(t *testing.T) {
	appErr := ErrValidationWithFields("validation failed", map[string]string{
		"name":         "name is required",
		"sellingPrice": "sellingPrice must be greater than or equal to 0",
	})
	assert.Equal(t, CodeValidationError, appErr.Code)
	assert.Len(t, appErr.Details, 2)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"passthrough", ErrConflict("dup"), CodeConflict},
		{"not found text", errors.New("warehouse not found"), CodeNotFound},
		{"duplicate text", errors.New("order number already exists"), CodeConflict},
		{"required text", errors.New("name is required"), CodeValidationError},
		{"unknown", errors.New("weird"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, MapDomainError(tt.err).Code)
		})
	}

	assert.Nil(t, MapDomainError(nil))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, CodeInternalError, FromError(errors.New("x")).Code)

	orig := ErrNotFound("thing")
	assert.Same(t, orig, FromError(orig))
}
