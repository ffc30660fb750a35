package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

// StatsService computes emission statistics over a company's activities.
type StatsService struct {
	reader store.EmissionReader
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(reader store.EmissionReader, logger *slog.Logger) *StatsService {
	return &StatsService{
		reader: reader,
		logger: logger,
	}
}

// StatsReport is the statistics engine output with the parsed range and
// any warnings about ignored bounds.
type StatsReport struct {
	*domain.EmissionStats
	DateFrom string           `json:"date_from,omitempty"`
	DateTo   string           `json:"date_to,omitempty"`
	Warnings []domain.Warning `json:"warnings,omitempty"`

	dateRange domain.DateRange
}

// Range returns the bounds the report was computed over.
func (r *StatsReport) Range() domain.DateRange {
	return r.dateRange
}

// GetEmissionStats aggregates companyID's activities between the optional
// inclusive bounds dateFrom and dateTo (YYYY-MM-DD). A malformed bound is
// ignored with a warning; it never fails the call.
func (s *StatsService) GetEmissionStats(ctx context.Context, companyID, dateFrom, dateTo string) (*StatsReport, error) {
	dateRange, warnings := domain.ParseDateRange(dateFrom, dateTo)
	for _, w := range warnings {
		s.logger.Info("ignoring date bound", "company_id", companyID, "field", w.Field)
	}

	stats, err := s.compute(ctx, companyID, dateRange)
	if err != nil {
		return nil, err
	}

	report := &StatsReport{
		EmissionStats: stats,
		Warnings:      warnings,
		dateRange:     dateRange,
	}
	if dateRange.From != nil {
		report.DateFrom = domain.FormatDate(*dateRange.From)
	}
	if dateRange.To != nil {
		report.DateTo = domain.FormatDate(*dateRange.To)
	}
	return report, nil
}

// AllTime aggregates every activity of companyID.
func (s *StatsService) AllTime(ctx context.Context, companyID string) (*domain.EmissionStats, error) {
	return s.compute(ctx, companyID, domain.DateRange{})
}

func (s *StatsService) compute(ctx context.Context, companyID string, r domain.DateRange) (*domain.EmissionStats, error) {
	activities, err := s.reader.ListActivities(ctx, store.ActivityQuery{CompanyID: companyID}.ForRange(r))
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return domain.ComputeEmissionStats(activities), nil
}
