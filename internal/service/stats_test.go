package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

func TestGetEmissionStats_WorkedExample(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	c := env.register(t, "Acme Corp", "ops@acme.example")
	env.addActivity(t, c.ID, "Boiler", domain.CategoryEnergy, 100, "2024-01-05")
	env.addActivity(t, c.ID, "Lighting", domain.CategoryEnergy, 50, "2024-01-20")
	env.addActivity(t, c.ID, "Vans", domain.CategoryTransportation, 30, "2024-02-01")

	r, err := env.stats.GetEmissionStats(ctx, c.ID, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 180, r.TotalEmissions, 1e-9)
	assert.Equal(t, map[domain.Category]float64{
		domain.CategoryEnergy:         150,
		domain.CategoryTransportation: 30,
	}, r.ByCategory)
	assert.Equal(t, []domain.MonthlyEmission{
		{Month: "2024-01", Total: 150},
		{Month: "2024-02", Total: 30},
	}, r.MonthlyTrend)
	assert.Equal(t, []string{"Boiler", "Lighting", "Vans"}, titles(r.HighestEmissions))
	assert.Empty(t, r.Warnings)
}

func TestGetEmissionStats_Range(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	c := env.register(t, "Acme Corp", "ops@acme.example")
	env.addActivity(t, c.ID, "Boiler", domain.CategoryEnergy, 100, "2024-01-05")
	env.addActivity(t, c.ID, "Lighting", domain.CategoryEnergy, 50, "2024-01-20")
	env.addActivity(t, c.ID, "Vans", domain.CategoryTransportation, 30, "2024-02-01")

	t.Run("inclusive bounds", func(t *testing.T) {
		r, err := env.stats.GetEmissionStats(ctx, c.ID, "2024-01-20", "2024-02-01")
		require.NoError(t, err)
		assert.InDelta(t, 80, r.TotalEmissions, 1e-9)
		assert.Equal(t, "2024-01-20", r.DateFrom)
		assert.Equal(t, "2024-02-01", r.DateTo)
	})

	t.Run("invalid bound equals omitted bound plus warning", func(t *testing.T) {
		omitted, err := env.stats.GetEmissionStats(ctx, c.ID, "", "2024-01-31")
		require.NoError(t, err)
		invalid, err := env.stats.GetEmissionStats(ctx, c.ID, "2024/01/01", "2024-01-31")
		require.NoError(t, err)

		assert.Equal(t, omitted.EmissionStats, invalid.EmissionStats)
		require.Len(t, invalid.Warnings, 1)
		assert.Equal(t, "from_date", invalid.Warnings[0].Field)
		assert.Empty(t, invalid.DateFrom)
	})

	t.Run("other companies contribute nothing", func(t *testing.T) {
		other := env.register(t, "Beta Ltd", "ops@beta.example")
		r, err := env.stats.GetEmissionStats(ctx, other.ID, "", "")
		require.NoError(t, err)
		assert.Zero(t, r.TotalEmissions)
		assert.Empty(t, r.ByCategory)
		assert.Empty(t, r.HighestEmissions)
	})
}

func TestGetEmissionStats_IgnoredBoundLoggedAtInfo(t *testing.T) {
	env := setupTestEnv(t)
	c := env.register(t, "Acme Corp", "ops@acme.example")

	var buf bytes.Buffer
	svc := NewStatsService(env.store, slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	r, err := svc.GetEmissionStats(context.Background(), c.ID, "2024-13-40", "")
	require.NoError(t, err)
	require.Len(t, r.Warnings, 1)

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"msg":"ignoring date bound"`)
	assert.Contains(t, out, `"field":"from_date"`)
}
