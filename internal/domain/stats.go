package domain

import (
	"cmp"
	"slices"
)

// HighestEmissionsLimit is the number of activities reported in HighestEmissions.
const HighestEmissionsLimit = 5

// MonthlyEmission is the summed emission value for one calendar month.
type MonthlyEmission struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// CategoryTotal is the summed emission value for one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
}

// EmissionStats aggregates a company's activities over a date range.
//
// Values are summed as recorded. Activities in kg and tonnes are added
// together without conversion; MixedUnits flags when that happened.
type EmissionStats struct {
	TotalEmissions   float64              `json:"total_emissions"`
	ByCategory       map[Category]float64 `json:"by_category"`
	MonthlyTrend     []MonthlyEmission    `json:"monthly_trend"`
	HighestEmissions []*Activity          `json:"highest_emissions"`
	ActivityCount    int                  `json:"activity_count"`
	MixedUnits       bool                 `json:"mixed_units"`
}

// ComputeEmissionStats aggregates activities in a single pass.
// The input is not modified. Ties in HighestEmissions keep input order.
func ComputeEmissionStats(activities []*Activity) *EmissionStats {
	stats := &EmissionStats{
		ByCategory:       make(map[Category]float64),
		MonthlyTrend:     []MonthlyEmission{},
		HighestEmissions: []*Activity{},
		ActivityCount:    len(activities),
	}

	monthly := make(map[string]float64)
	units := make(map[Unit]struct{})

	for _, a := range activities {
		stats.TotalEmissions += a.EmissionValue
		stats.ByCategory[a.Category] += a.EmissionValue
		monthly[a.Date.Format(MonthLayout)] += a.EmissionValue
		units[a.EmissionUnit] = struct{}{}
	}
	stats.MixedUnits = len(units) > 1

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	slices.Sort(months)
	for _, m := range months {
		stats.MonthlyTrend = append(stats.MonthlyTrend, MonthlyEmission{Month: m, Total: monthly[m]})
	}

	ranked := slices.Clone(activities)
	slices.SortStableFunc(ranked, func(a, b *Activity) int {
		return cmp.Compare(b.EmissionValue, a.EmissionValue)
	})
	if len(ranked) > HighestEmissionsLimit {
		ranked = ranked[:HighestEmissionsLimit]
	}
	if ranked != nil {
		stats.HighestEmissions = ranked
	}

	return stats
}

// CategoryTotals returns ByCategory as a slice ordered by category name.
func (s *EmissionStats) CategoryTotals() []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(s.ByCategory))
	for c, v := range s.ByCategory {
		totals = append(totals, CategoryTotal{Category: c, Total: v})
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return totals
}

// RecentMonths returns at most n of the latest months of the trend, still ascending.
func (s *EmissionStats) RecentMonths(n int) []MonthlyEmission {
	if len(s.MonthlyTrend) <= n {
		return s.MonthlyTrend
	}
	return s.MonthlyTrend[len(s.MonthlyTrend)-n:]
}
