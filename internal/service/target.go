package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/id"
	"github.com/carbontrack/carbontrack-server/internal/store"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// TargetService manages emission-reduction targets.
type TargetService struct {
	store     store.Store
	stats     *StatsService
	emitter   events.Emitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTargetService creates a new target service.
func NewTargetService(
	store store.Store,
	stats *StatsService,
	emitter events.Emitter,
	validator *validation.Validator,
	logger *slog.Logger,
) *TargetService {
	if emitter == nil {
		emitter = events.Noop{}
	}
	return &TargetService{
		store:     store,
		stats:     stats,
		emitter:   emitter,
		validator: validator,
		logger:    logger,
	}
}

// CreateTargetRequest is the submitted target form.
type CreateTargetRequest struct {
	TargetValue *float64 `json:"target_value" validate:"required,gte=0"`
	TargetUnit  string   `json:"target_unit" validate:"required,emission_unit"`
	TargetDate  string   `json:"target_date" validate:"required,ymd"`
	Category    string   `json:"category" validate:"required,target_category"`
}

// TargetProgress is a target compared against the company's current emissions.
type TargetProgress struct {
	*domain.EmissionTarget
	CurrentEmissions float64 `json:"current_emissions"`
	OnTrack          bool    `json:"on_track"`
}

// CreateTarget validates and stores a new target for companyID.
func (s *TargetService) CreateTarget(ctx context.Context, companyID string, req CreateTargetRequest) (*domain.EmissionTarget, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(req.TargetDate)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"target_date": "must be a date in YYYY-MM-DD format",
		})
	}

	targetID, err := id.Generate(id.PrefixTarget)
	if err != nil {
		return nil, fmt.Errorf("generate target ID: %w", err)
	}

	target := &domain.EmissionTarget{
		ID:          targetID,
		CompanyID:   companyID,
		TargetValue: *req.TargetValue,
		TargetUnit:  domain.Unit(req.TargetUnit),
		TargetDate:  date,
		Category:    req.Category,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateTarget(ctx, target); err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}

	s.emitter.Emit(events.NewTargetCreated(target))

	s.logger.Info("target created",
		"company_id", companyID,
		"target_id", target.ID,
		"category", target.Category,
	)

	return target, nil
}

// ListTargets returns the company's targets ordered by category then date,
// each compared with the company's all-time emissions in its scope.
func (s *TargetService) ListTargets(ctx context.Context, companyID string) ([]TargetProgress, error) {
	targets, err := s.store.ListTargets(ctx, store.TargetQuery{CompanyID: companyID})
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	if len(targets) == 0 {
		return []TargetProgress{}, nil
	}

	stats, err := s.stats.AllTime(ctx, companyID)
	if err != nil {
		return nil, err
	}

	out := make([]TargetProgress, len(targets))
	for i, t := range targets {
		out[i] = Progress(t, stats)
	}
	return out, nil
}

// LatestOverallTarget returns the overall target with the latest target date,
// or nil when the company has none.
func (s *TargetService) LatestOverallTarget(ctx context.Context, companyID string) (*domain.EmissionTarget, error) {
	targets, err := s.store.ListTargets(ctx, store.TargetQuery{
		CompanyID: companyID,
		Category:  domain.TargetOverall,
	})
	if err != nil {
		return nil, fmt.Errorf("list overall targets: %w", err)
	}

	var latest *domain.EmissionTarget
	for _, t := range targets {
		if latest == nil || !t.TargetDate.Before(latest.TargetDate) {
			latest = t
		}
	}
	return latest, nil
}

// Progress compares t with stats: the overall total for overall targets,
// otherwise the target category's sum.
func Progress(t *domain.EmissionTarget, stats *domain.EmissionStats) TargetProgress {
	current := stats.TotalEmissions
	if !t.IsOverall() {
		current = stats.ByCategory[domain.Category(t.Category)]
	}
	return TargetProgress{
		EmissionTarget:   t,
		CurrentEmissions: current,
		OnTrack:          current <= t.TargetValue,
	}
}
