package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/report"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

const (
	// RecentActivitiesLimit is how many activities the dashboard lists.
	RecentActivitiesLimit = 5
	// DashboardTrendMonths is how many months of trend the dashboard shows.
	DashboardTrendMonths = 12
)

// DashboardService assembles the dashboard, chart data and reports.
type DashboardService struct {
	store    store.Store
	stats    *StatsService
	targets  *TargetService
	renderer *report.Renderer
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	store store.Store,
	stats *StatsService,
	targets *TargetService,
	renderer *report.Renderer,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		store:    store,
		stats:    stats,
		targets:  targets,
		renderer: renderer,
		logger:   logger,
	}
}

// ChartData is a labels/values pair series for charting.
type ChartData struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Dashboard is the company overview.
type Dashboard struct {
	Company          *domain.Company             `json:"company"`
	TotalEmissions   float64                     `json:"total_emissions"`
	ByCategory       map[domain.Category]float64 `json:"by_category"`
	ActivityCount    int                         `json:"activity_count"`
	MixedUnits       bool                        `json:"mixed_units"`
	RecentActivities []*domain.Activity          `json:"recent_activities"`
	LatestTarget     *TargetProgress             `json:"latest_target"`
	ChartData        ChartData                   `json:"chart_data"`
	MonthlyTrend     []domain.MonthlyEmission    `json:"monthly_trend"`
}

// Dashboard returns the overview for companyID over all of its activities.
func (s *DashboardService) Dashboard(ctx context.Context, companyID string) (*Dashboard, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	stats, err := s.stats.AllTime(ctx, companyID)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.ListActivities(ctx, store.ActivityQuery{
		CompanyID: companyID,
		Limit:     RecentActivitiesLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list recent activities: %w", err)
	}

	latest, err := s.targets.LatestOverallTarget(ctx, companyID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Company:          company,
		TotalEmissions:   stats.TotalEmissions,
		ByCategory:       stats.ByCategory,
		ActivityCount:    stats.ActivityCount,
		MixedUnits:       stats.MixedUnits,
		RecentActivities: recent,
		ChartData:        chartData(stats),
		MonthlyTrend:     stats.RecentMonths(DashboardTrendMonths),
	}
	if latest != nil {
		p := Progress(latest, stats)
		d.LatestTarget = &p
	}
	return d, nil
}

// ChartData returns all-time emissions by category, labels sorted.
func (s *DashboardService) ChartData(ctx context.Context, companyID string) (*ChartData, error) {
	stats, err := s.stats.AllTime(ctx, companyID)
	if err != nil {
		return nil, err
	}
	cd := chartData(stats)
	return &cd, nil
}

// Reports returns the statistics for the optional range plus warnings.
func (s *DashboardService) Reports(ctx context.Context, companyID, dateFrom, dateTo string) (*StatsReport, error) {
	return s.stats.GetEmissionStats(ctx, companyID, dateFrom, dateTo)
}

// ExportReport renders a simulated PDF export for the optional range.
func (s *DashboardService) ExportReport(ctx context.Context, companyID, dateFrom, dateTo string) (*report.Export, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	stats, err := s.stats.GetEmissionStats(ctx, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	export, err := s.renderer.Export(report.Input{
		Company:  company,
		Range:    stats.Range(),
		Stats:    stats.EmissionStats,
		Warnings: stats.Warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	s.logger.Info("report exported",
		"company_id", companyID,
		"export_id", export.ID,
		"activities", stats.ActivityCount,
	)
	return export, nil
}

func chartData(stats *domain.EmissionStats) ChartData {
	totals := stats.CategoryTotals()
	cd := ChartData{
		Labels: make([]string, len(totals)),
		Data:   make([]float64, len(totals)),
	}
	for i, ct := range totals {
		cd.Labels[i] = string(ct.Category)
		cd.Data[i] = ct.Total
	}
	return cd
}
