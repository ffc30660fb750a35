package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/report"
	"github.com/carbontrack/carbontrack-server/internal/search"
	"github.com/carbontrack/carbontrack-server/internal/service"
	"github.com/carbontrack/carbontrack-server/internal/sse"
	"github.com/carbontrack/carbontrack-server/internal/store/cache"
	"github.com/carbontrack/carbontrack-server/internal/store/sqlite"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// testEnvelope mirrors the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// stubCO2 returns a fixed reading.
type stubCO2 struct {
	reading domain.CO2Reading
}

func (s stubCO2) GetGlobalCO2(context.Context) *domain.CO2Reading {
	r := s.reading
	return &r
}

type testServer struct {
	*Server
	api        humatest.TestAPI
	store      *sqlite.Store
	tokens     *auth.TokenService
	sseManager *sse.Manager
}

type testOption func(*Options)

func withLoginRateLimit(n int) testOption {
	return func(o *Options) { o.LoginRateLimit = n }
}

// setupTestServer creates a fully wired server backed by temp-dir stores.
func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := cache.Open(filepath.Join(dir, "cache"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	idx, err := search.NewActivityIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go sseManager.Start(ctx)
	t.Cleanup(func() {
		_ = sseManager.Shutdown(context.Background())
		cancel()
	})

	v := validation.New()
	var emitter events.Emitter = sseManager

	sessions := service.NewSessionService(st, tokens, logger)
	authService := service.NewAuthService(st, tokens, sessions, v, logger)
	searchService := service.NewSearchService(idx, st, logger)
	stats := service.NewStatsService(st, logger)
	targets := service.NewTargetService(st, stats, emitter, v, logger)

	services := &Services{
		Auth:      authService,
		Activity:  service.NewActivityService(st, searchService, emitter, v, logger),
		Target:    targets,
		Stats:     stats,
		Dashboard: service.NewDashboardService(st, stats, targets, report.NewRenderer(language.English), logger),
		Search:    searchService,
		CO2: stubCO2{reading: domain.CO2Reading{
			CO2Level: 424.61, Date: "2024-05-01", Trend: domain.TrendUp, Source: "NOAA Monthly", Success: true,
		}},
	}

	options := Options{
		LoginRateLimit: 100,
		Health:         HealthChecks{Database: st, Cache: c},
	}
	for _, o := range opts {
		o(&options)
	}

	s := NewServer(services, sseManager, options, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.api),
		store:      st,
		tokens:     tokens,
		sseManager: sseManager,
	}
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func registrationBody(name, email string) map[string]any {
	return map[string]any{
		"name":             name,
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
		"industry":         "technology",
		"size":             "small",
	}
}

// login registers a company and returns its access token and auth response.
func (ts *testServer) login(t *testing.T, name, email string) AuthResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", registrationBody(name, email))
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	return decode[AuthResponse](t, resp.Body.Bytes()).Data
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func (ts *testServer) createActivity(t *testing.T, token, title, category string, value float64, date string) ActivityResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/activities", bearer(token), map[string]any{
		"title":          title,
		"category":       category,
		"date":           date,
		"emission_value": value,
		"emission_unit":  "kg",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "create activity failed: %s", resp.Body.String())
	return decode[ActivityResponse](t, resp.Body.Bytes()).Data
}
