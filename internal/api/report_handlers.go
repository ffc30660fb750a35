package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/report"
	"github.com/carbontrack/carbontrack-server/internal/service"
)

func (s *Server) registerReportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Dashboard",
		Description: "Returns totals, recent activities, the latest overall target and a twelve-month trend",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReports",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports",
		Summary:     "Emission statistics",
		Description: "Aggregates the company's emissions over an optional date range. Unparseable bounds are ignored and reported as warnings.",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReports)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportReport",
		Method:      http.MethodPost,
		Path:        "/api/v1/reports/export",
		Summary:     "Export report",
		Description: "Renders the report summary as markdown. PDF generation is simulated.",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExportReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChartData",
		Method:      http.MethodGet,
		Path:        "/api/v1/chart-data",
		Summary:     "Chart data",
		Description: "Returns all-time emissions by category as labels and values",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChartData)
}

// === DTOs ===

// DateRangeInput carries the optional report bounds.
type DateRangeInput struct {
	DateFrom string `query:"from_date" doc:"Inclusive lower bound (YYYY-MM-DD)"`
	DateTo   string `query:"to_date" doc:"Inclusive upper bound (YYYY-MM-DD)"`
}

// StatsResponse is the statistics engine output.
type StatsResponse struct {
	TotalEmissions   float64                  `json:"total_emissions" doc:"Sum of all matching emission values"`
	ByCategory       map[string]float64       `json:"by_category" doc:"Totals per category"`
	MonthlyTrend     []domain.MonthlyEmission `json:"monthly_trend" doc:"Totals per month, oldest first"`
	HighestEmissions []ActivityResponse       `json:"highest_emissions" doc:"Up to five largest activities"`
	ActivityCount    int                      `json:"activity_count" doc:"Number of matching activities"`
	MixedUnits       bool                     `json:"mixed_units" doc:"Whether kg and tonnes were summed together"`
	DateFrom         string                   `json:"date_from,omitempty" doc:"Applied lower bound"`
	DateTo           string                   `json:"date_to,omitempty" doc:"Applied upper bound"`
	Warnings         []domain.Warning         `json:"warnings,omitempty" doc:"Ignored bounds"`
}

// StatsOutput wraps the statistics for Huma.
type StatsOutput struct {
	Body StatsResponse
}

// DashboardResponse is the company overview.
type DashboardResponse struct {
	Company          CompanyResponse          `json:"company"`
	TotalEmissions   float64                  `json:"total_emissions"`
	ByCategory       map[string]float64       `json:"by_category"`
	ActivityCount    int                      `json:"activity_count"`
	MixedUnits       bool                     `json:"mixed_units"`
	RecentActivities []ActivityResponse       `json:"recent_activities"`
	LatestTarget     *TargetResponse          `json:"latest_target,omitempty"`
	ChartData        service.ChartData        `json:"chart_data"`
	MonthlyTrend     []domain.MonthlyEmission `json:"monthly_trend"`
}

// DashboardOutput wraps the dashboard for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// ChartDataOutput wraps chart data for Huma.
type ChartDataOutput struct {
	Body *service.ChartData
}

// ExportOutput wraps the simulated export for Huma.
type ExportOutput struct {
	Body *report.Export
}

// === Handlers ===

func (s *Server) handleGetDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.services.Dashboard.Dashboard(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := DashboardResponse{
		Company:          mapCompany(d.Company),
		TotalEmissions:   d.TotalEmissions,
		ByCategory:       mapByCategory(d.ByCategory),
		ActivityCount:    d.ActivityCount,
		MixedUnits:       d.MixedUnits,
		RecentActivities: mapActivities(d.RecentActivities),
		ChartData:        d.ChartData,
		MonthlyTrend:     d.MonthlyTrend,
	}
	if d.LatestTarget != nil {
		t := mapTargetProgress(*d.LatestTarget)
		resp.LatestTarget = &t
	}

	return &DashboardOutput{Body: resp}, nil
}

func (s *Server) handleGetReports(ctx context.Context, input *DateRangeInput) (*StatsOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Dashboard.Reports(ctx, companyID, input.DateFrom, input.DateTo)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: mapStatsReport(r)}, nil
}

func (s *Server) handleExportReport(ctx context.Context, input *DateRangeInput) (*ExportOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	export, err := s.services.Dashboard.ExportReport(ctx, companyID, input.DateFrom, input.DateTo)
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Body: export}, nil
}

func (s *Server) handleGetChartData(ctx context.Context, _ *struct{}) (*ChartDataOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	cd, err := s.services.Dashboard.ChartData(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return &ChartDataOutput{Body: cd}, nil
}

// === Helpers ===

func mapByCategory(in map[domain.Category]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for c, total := range in {
		out[string(c)] = total
	}
	return out
}

func mapStatsReport(r *service.StatsReport) StatsResponse {
	trend := r.MonthlyTrend
	if trend == nil {
		trend = []domain.MonthlyEmission{}
	}
	return StatsResponse{
		TotalEmissions:   r.TotalEmissions,
		ByCategory:       mapByCategory(r.ByCategory),
		MonthlyTrend:     trend,
		HighestEmissions: mapActivities(r.HighestEmissions),
		ActivityCount:    r.ActivityCount,
		MixedUnits:       r.MixedUnits,
		DateFrom:         r.DateFrom,
		DateTo:           r.DateTo,
		Warnings:         r.Warnings,
	}
}
