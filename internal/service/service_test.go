package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/report"
	"github.com/carbontrack/carbontrack-server/internal/search"
	"github.com/carbontrack/carbontrack-server/internal/store/sqlite"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingEmitter) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store     *sqlite.Store
	index     *search.ActivityIndex
	emitter   *recordingEmitter
	tokens    *auth.TokenService
	sessions  *SessionService
	auth      *AuthService
	search    *SearchService
	stats     *StatsService
	activity  *ActivityService
	targets   *TargetService
	dashboard *DashboardService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.NewActivityIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	v := validation.New()
	emitter := &recordingEmitter{}

	env := &testEnv{store: st, index: idx, emitter: emitter, tokens: tokens}
	env.sessions = NewSessionService(st, tokens, logger)
	env.auth = NewAuthService(st, tokens, env.sessions, v, logger)
	env.search = NewSearchService(idx, st, logger)
	env.stats = NewStatsService(st, logger)
	env.activity = NewActivityService(st, env.search, emitter, v, logger)
	env.targets = NewTargetService(st, env.stats, emitter, v, logger)
	env.dashboard = NewDashboardService(st, env.stats, env.targets, report.NewRenderer(language.English), logger)
	return env
}

func (e *testEnv) register(t *testing.T, name, email string) *domain.Company {
	t.Helper()
	c, err := e.auth.Register(context.Background(), RegisterRequest{
		Name:            name,
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Industry:        "technology",
		Size:            "small",
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) addActivity(t *testing.T, companyID, title string, cat domain.Category, value float64, date string) *domain.Activity {
	t.Helper()
	a, err := e.activity.CreateActivity(context.Background(), companyID, CreateActivityRequest{
		Title:         title,
		Category:      string(cat),
		Date:          date,
		EmissionValue: &value,
		EmissionUnit:  string(domain.UnitKg),
	})
	require.NoError(t, err)
	return a
}

func ptr[T any](v T) *T { return &v }
