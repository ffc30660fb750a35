package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

func asAPIError(t *testing.T, err huma.StatusError) *APIError {
	t.Helper()
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	return apiErr
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	t.Run("domain error keeps code and details", func(t *testing.T) {
		wrapped := fmt.Errorf("delete: %w", domainerrors.Forbidden("You do not have permission to delete this activity."))
		apiErr := asAPIError(t, huma.NewError(http.StatusInternalServerError, "unexpected", wrapped))

		assert.Equal(t, http.StatusForbidden, apiErr.GetStatus())
		assert.Equal(t, "FORBIDDEN", apiErr.Code)
		assert.Equal(t, "You do not have permission to delete this activity.", apiErr.Message)
	})

	t.Run("store not found", func(t *testing.T) {
		err := fmt.Errorf("get company: %w", store.ErrNotFound)
		apiErr := asAPIError(t, huma.NewError(http.StatusInternalServerError, "unexpected", err))

		assert.Equal(t, http.StatusNotFound, apiErr.GetStatus())
		assert.Equal(t, "NOT_FOUND", apiErr.Code)
	})

	t.Run("schema errors become field validation", func(t *testing.T) {
		apiErr := asAPIError(t, huma.NewError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Location: "body.emission_value", Message: "expected number"},
			&huma.ErrorDetail{Location: "query.limit", Message: "expected number <= 100"},
		))

		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Equal(t, map[string]string{
			"emission_value": "expected number",
			"limit":          "expected number <= 100",
		}, apiErr.Details)
	})

	t.Run("internal errors hide the message", func(t *testing.T) {
		apiErr := asAPIError(t, huma.NewError(http.StatusInternalServerError, "pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, apiErr.GetStatus())
		assert.Equal(t, "INTERNAL", apiErr.Code)
		assert.Equal(t, "Internal server error", apiErr.Message)
	})

	t.Run("plain status", func(t *testing.T) {
		apiErr := asAPIError(t, huma.Error401Unauthorized("Authentication required"))

		assert.Equal(t, http.StatusUnauthorized, apiErr.GetStatus())
		assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
		assert.Equal(t, "Authentication required", apiErr.Message)
	})
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name             string
		xff, xri, remote string
		want             string
	}{
		{name: "forwarded chain", xff: "203.0.113.7, 10.0.0.1", remote: "10.0.0.2:5555", want: "203.0.113.7"},
		{name: "real ip", xri: "198.51.100.4", remote: "10.0.0.2:5555", want: "198.51.100.4"},
		{name: "remote addr", remote: "192.0.2.1:41234", want: "192.0.2.1"},
		{name: "no port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractIP(tt.xff, tt.xri, tt.remote))
		})
	}
}
