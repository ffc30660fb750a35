package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Forbidden("You do not have permission to delete this activity.")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("delete activity: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal("save failed").WithCause(cause)

	assert.Equal(t, "save failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save failed", err.Message)
}

func TestFieldErrors(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"email": "is already registered"})
	assert.Equal(t, map[string]string{"email": "is already registered"}, FieldErrors(err))

	assert.Nil(t, FieldErrors(NotFound("nope")))
	assert.Nil(t, FieldErrors(fmt.Errorf("plain")))
}
