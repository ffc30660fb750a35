package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

func makeTestActivity(id, companyID string, cat domain.Category, value float64, date string) *domain.Activity {
	d, err := domain.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return &domain.Activity{
		ID:            id,
		CompanyID:     companyID,
		Title:         "Activity " + id,
		Category:      cat,
		Date:          d,
		EmissionValue: value,
		EmissionUnit:  domain.UnitKg,
		CreatedAt:     time.Now(),
	}
}

func seedActivities(t *testing.T, s *Store, activities ...*domain.Activity) {
	t.Helper()
	for _, a := range activities {
		require.NoError(t, s.CreateActivity(context.Background(), a))
	}
}

func TestCreateAndGetActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestCompany(t, s, "company-a")

	a := makeTestActivity("act-1", "company-a", domain.CategoryEnergy, 12.5, "2024-03-15")
	a.Description = "Office electricity, **March**"
	a.EmissionUnit = domain.UnitTonnes
	require.NoError(t, s.CreateActivity(ctx, a))

	got, err := s.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, "company-a", got.CompanyID)
	assert.Equal(t, domain.CategoryEnergy, got.Category)
	assert.Equal(t, "Office electricity, **March**", got.Description)
	assert.Equal(t, "2024-03-15", domain.FormatDate(got.Date))
	assert.InDelta(t, 12.5, got.EmissionValue, 1e-9)
	assert.Equal(t, domain.UnitTonnes, got.EmissionUnit)
}

func TestCreateActivity_UnknownCompanyRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateActivity(context.Background(), makeTestActivity("act-1", "ghost", domain.CategoryWaste, 1, "2024-01-01"))
	assert.Error(t, err)
}

func TestDeleteActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestCompany(t, s, "company-a")
	seedActivities(t, s, makeTestActivity("act-1", "company-a", domain.CategoryWaste, 1, "2024-01-01"))

	require.NoError(t, s.DeleteActivity(ctx, "act-1"))

	_, err := s.GetActivity(ctx, "act-1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = s.DeleteActivity(ctx, "act-1")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListActivities_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestCompany(t, s, "company-a")
	createTestCompany(t, s, "company-b")

	seedActivities(t, s,
		makeTestActivity("a1", "company-a", domain.CategoryEnergy, 100, "2024-01-05"),
		makeTestActivity("a2", "company-a", domain.CategoryEnergy, 50, "2024-01-20"),
		makeTestActivity("a3", "company-a", domain.CategoryTransportation, 30, "2024-02-01"),
		makeTestActivity("b1", "company-b", domain.CategoryEnergy, 999, "2024-01-10"),
	)

	t.Run("company scoped and date descending", func(t *testing.T) {
		got, err := s.ListActivities(ctx, store.ActivityQuery{CompanyID: "company-a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a3", "a2", "a1"}, activityIDs(got))
	})

	t.Run("category", func(t *testing.T) {
		got, err := s.ListActivities(ctx, store.ActivityQuery{CompanyID: "company-a", Category: domain.CategoryEnergy})
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "a1"}, activityIDs(got))
	})

	t.Run("inclusive date bounds", func(t *testing.T) {
		r, _ := domain.ParseDateRange("2024-01-20", "2024-02-01")
		got, err := s.ListActivities(ctx, store.ActivityQuery{CompanyID: "company-a"}.ForRange(r))
		require.NoError(t, err)
		assert.Equal(t, []string{"a3", "a2"}, activityIDs(got))
	})

	t.Run("limit", func(t *testing.T) {
		got, err := s.ListActivities(ctx, store.ActivityQuery{CompanyID: "company-a", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"a3"}, activityIDs(got))
	})

	t.Run("no matches is empty not nil", func(t *testing.T) {
		got, err := s.ListActivities(ctx, store.ActivityQuery{CompanyID: "company-a", Category: domain.CategoryWater})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestDistinctCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestCompany(t, s, "company-a")
	createTestCompany(t, s, "company-b")

	seedActivities(t, s,
		makeTestActivity("a1", "company-a", domain.CategoryWaste, 1, "2024-01-05"),
		makeTestActivity("a2", "company-a", domain.CategoryEnergy, 1, "2024-01-06"),
		makeTestActivity("a3", "company-a", domain.CategoryWaste, 1, "2024-01-07"),
		makeTestActivity("b1", "company-b", domain.CategoryWater, 1, "2024-01-07"),
	)

	got, err := s.DistinctCategories(ctx, "company-a")
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{domain.CategoryEnergy, domain.CategoryWaste}, got)
}

func activityIDs(activities []*domain.Activity) []string {
	ids := make([]string, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}
	return ids
}
