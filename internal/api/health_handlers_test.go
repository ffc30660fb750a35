package api

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "healthy", health.Status)
	for _, name := range []string{"database", "cache", "search", "events"} {
		require.Contains(t, health.Components, name)
		assert.Equal(t, "healthy", health.Components[name].Status, name)
	}
	assert.Equal(t, "no connected clients", health.Components["events"].Message)
}

func TestHealthCheck_Degraded(t *testing.T) {
	ts := setupTestServer(t)
	ts.health.Cache = failingPinger{}
	ts.health.Bus = failingPinger{}

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "unhealthy", health.Components["cache"].Status)
	assert.Equal(t, "degraded", health.Components["events"].Status)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.health.Database = failingPinger{}

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "unhealthy", health.Status)
}

func TestGetGlobalCO2_Public(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/co2")
	require.Equal(t, http.StatusOK, resp.Code)

	reading := decode[domain.CO2Reading](t, resp.Body.Bytes()).Data
	assert.InDelta(t, 424.61, reading.CO2Level, 1e-9)
	assert.Equal(t, domain.TrendUp, reading.Trend)
	assert.True(t, reading.Success)
	assert.False(t, reading.IsFallback)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nothing-here")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestEventStream(t *testing.T) {
	ts := setupTestServer(t)
	acme := ts.login(t, "Acme Ltd", "ops@acme.test").AccessToken

	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	t.Run("requires auth", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/events")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("delivers company events", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+acme)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		reader := bufio.NewReader(resp.Body)
		readEvent := func() string {
			for {
				line, err := reader.ReadString('\n')
				require.NoError(t, err)
				if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
					return name
				}
			}
		}

		require.Equal(t, "connected", readEvent())

		ts.createActivity(t, acme, "Electricity", "energy", 10, "2024-01-05")
		assert.Equal(t, "activity.created", readEvent())
	})
}
