package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargets(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "Acme Ltd", "ops@acme.test").AccessToken
	seedWorkedExample(t, ts, token)

	for _, body := range []map[string]any{
		{"target_value": 100, "target_unit": "kg", "target_date": "2030-01-01", "category": "energy"},
		{"target_value": 500, "target_unit": "kg", "target_date": "2030-01-01", "category": "overall"},
	} {
		resp := ts.api.Post("/api/v1/targets", bearer(token), body)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		created := decode[TargetResponse](t, resp.Body.Bytes()).Data
		assert.NotEmpty(t, created.ID)
		assert.Nil(t, created.OnTrack)
	}

	resp := ts.api.Get("/api/v1/targets", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	targets := decode[[]TargetResponse](t, resp.Body.Bytes()).Data
	require.Len(t, targets, 2)

	// Ordered by category: energy before overall.
	energy, overall := targets[0], targets[1]
	assert.Equal(t, "energy", energy.Category)
	require.NotNil(t, energy.CurrentEmissions)
	assert.InDelta(t, 150, *energy.CurrentEmissions, 1e-9)
	assert.False(t, *energy.OnTrack)

	assert.Equal(t, "overall", overall.Category)
	assert.InDelta(t, 180, *overall.CurrentEmissions, 1e-9)
	assert.True(t, *overall.OnTrack)
}

func TestCreateTarget_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "Acme Ltd", "ops@acme.test").AccessToken

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{
			name:      "unknown category",
			body:      map[string]any{"target_value": 1, "target_unit": "kg", "target_date": "2030-01-01", "category": "everything"},
			wantField: "category",
		},
		{
			name:      "negative value",
			body:      map[string]any{"target_value": -1, "target_unit": "kg", "target_date": "2030-01-01", "category": "overall"},
			wantField: "target_value",
		},
		{
			name:      "bad date",
			body:      map[string]any{"target_value": 1, "target_unit": "kg", "target_date": "2030-1-1", "category": "overall"},
			wantField: "target_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/targets", bearer(token), tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Contains(t, decode[any](t, resp.Body.Bytes()).Details, tt.wantField)
		})
	}
}

func TestListTargets_Empty(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "Acme Ltd", "ops@acme.test").AccessToken

	resp := ts.api.Get("/api/v1/targets", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"data":[]`)
}
