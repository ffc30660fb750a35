package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/id"
	"github.com/carbontrack/carbontrack-server/internal/search"
	"github.com/carbontrack/carbontrack-server/internal/store"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// ActivityService records, lists, deletes and searches a company's activities.
type ActivityService struct {
	store     store.Store
	search    *SearchService
	emitter   events.Emitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(
	store store.Store,
	search *SearchService,
	emitter events.Emitter,
	validator *validation.Validator,
	logger *slog.Logger,
) *ActivityService {
	if emitter == nil {
		emitter = events.Noop{}
	}
	return &ActivityService{
		store:     store,
		search:    search,
		emitter:   emitter,
		validator: validator,
		logger:    logger,
	}
}

// CreateActivityRequest is the submitted activity form.
type CreateActivityRequest struct {
	Title         string   `json:"title" validate:"required,max=100"`
	Category      string   `json:"category" validate:"required,activity_category"`
	Description   string   `json:"description" validate:"max=500"`
	Date          string   `json:"date" validate:"required,ymd"`
	EmissionValue *float64 `json:"emission_value" validate:"required,gte=0"`
	EmissionUnit  string   `json:"emission_unit" validate:"required,emission_unit"`
}

// ActivityFilter narrows ListActivities. Date bounds are raw YYYY-MM-DD strings.
type ActivityFilter struct {
	Category string
	DateFrom string
	DateTo   string
}

// ActivityList is the result of ListActivities.
type ActivityList struct {
	Activities []*domain.Activity `json:"activities"`
	Categories []domain.Category  `json:"categories"`
	Warnings   []domain.Warning   `json:"warnings,omitempty"`
}

// CreateActivity validates and stores a new activity for companyID.
func (s *ActivityService) CreateActivity(ctx context.Context, companyID string, req CreateActivityRequest) (*domain.Activity, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"date": "must be a date in YYYY-MM-DD format",
		})
	}

	activityID, err := id.Generate(id.PrefixActivity)
	if err != nil {
		return nil, fmt.Errorf("generate activity ID: %w", err)
	}

	activity := &domain.Activity{
		ID:            activityID,
		CompanyID:     companyID,
		Title:         req.Title,
		Category:      domain.Category(req.Category),
		Description:   normalizeDescription(req.Description),
		Date:          date,
		EmissionValue: *req.EmissionValue,
		EmissionUnit:  domain.Unit(req.EmissionUnit),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	s.search.IndexActivity(activity)
	s.emitter.Emit(events.NewActivityCreated(activity))

	s.logger.Info("activity created",
		"company_id", companyID,
		"activity_id", activity.ID,
		"category", activity.Category,
	)

	return activity, nil
}

// ListActivities returns the company's activities, newest first, together
// with every category the company has used. Unparseable date bounds are
// ignored and reported as warnings.
func (s *ActivityService) ListActivities(ctx context.Context, companyID string, filter ActivityFilter) (*ActivityList, error) {
	dateRange, warnings := domain.ParseDateRange(filter.DateFrom, filter.DateTo)

	q := store.ActivityQuery{CompanyID: companyID}.ForRange(dateRange)
	if filter.Category != "" {
		cat := domain.Category(filter.Category)
		if !cat.Valid() {
			warnings = append(warnings, domain.Warning{
				Field:   "category",
				Message: fmt.Sprintf("unknown category %q ignored", filter.Category),
			})
		} else {
			q.Category = cat
		}
	}

	activities, err := s.store.ListActivities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	categories, err := s.store.DistinctCategories(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return &ActivityList{
		Activities: activities,
		Categories: categories,
		Warnings:   warnings,
	}, nil
}

// DeleteActivity removes an activity owned by companyID.
// Another company's activity is left untouched and yields FORBIDDEN.
func (s *ActivityService) DeleteActivity(ctx context.Context, companyID, activityID string) error {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("activity not found")
		}
		return fmt.Errorf("get activity: %w", err)
	}

	if !activity.OwnedBy(companyID) {
		s.logger.Warn("cross-company delete rejected",
			"company_id", companyID,
			"activity_id", activityID,
		)
		return domainerrors.Forbidden("You do not have permission to delete this activity.")
	}

	if err := s.store.DeleteActivity(ctx, activityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("activity not found")
		}
		return fmt.Errorf("delete activity: %w", err)
	}

	s.search.RemoveActivity(activityID)
	s.emitter.Emit(events.NewActivityDeleted(companyID, activityID))

	s.logger.Info("activity deleted", "company_id", companyID, "activity_id", activityID)
	return nil
}

// SearchActivities runs a full-text search over the company's activities.
func (s *ActivityService) SearchActivities(ctx context.Context, companyID string, params search.Params) (*search.Result, error) {
	params.CompanyID = companyID
	return s.search.Search(ctx, params)
}
