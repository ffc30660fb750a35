package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/search"
	"github.com/carbontrack/carbontrack-server/internal/service"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listActivities",
		Method:      http.MethodGet,
		Path:        "/api/v1/activities",
		Summary:     "List activities",
		Description: "Returns the company's activities, newest first. Unparseable date bounds are ignored and reported as warnings.",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListActivities)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createActivity",
		Method:        http.MethodPost,
		Path:          "/api/v1/activities",
		Summary:       "Record activity",
		Description:   "Records an emission-producing activity. HTML descriptions are stored as markdown.",
		Tags:          []string{"Activities"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateActivity)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchActivities",
		Method:      http.MethodGet,
		Path:        "/api/v1/activities/search",
		Summary:     "Search activities",
		Description: "Full-text search over the company's activity titles, descriptions and categories",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchActivities)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteActivity",
		Method:      http.MethodDelete,
		Path:        "/api/v1/activities/{id}",
		Summary:     "Delete activity",
		Description: "Deletes an activity. Only the owning company may delete it.",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteActivity)
}

// === DTOs ===

// ActivityResponse is an activity in API responses.
type ActivityResponse struct {
	ID            string    `json:"id" doc:"Activity ID"`
	Title         string    `json:"title" doc:"Short title"`
	Category      string    `json:"category" doc:"Activity category"`
	Description   string    `json:"description,omitempty" doc:"Markdown description"`
	Date          string    `json:"date" doc:"Activity date (YYYY-MM-DD)"`
	EmissionValue float64   `json:"emission_value" doc:"Emission amount as entered"`
	EmissionUnit  string    `json:"emission_unit" doc:"kg or tonnes"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation timestamp"`
}

// ListActivitiesInput contains the list filters.
type ListActivitiesInput struct {
	Category string `query:"category" doc:"Only this category"`
	DateFrom string `query:"from_date" doc:"Inclusive lower bound (YYYY-MM-DD)"`
	DateTo   string `query:"to_date" doc:"Inclusive upper bound (YYYY-MM-DD)"`
}

// ListActivitiesResponse is the filtered activity list.
type ListActivitiesResponse struct {
	Activities []ActivityResponse `json:"activities" doc:"Matching activities, newest first"`
	Categories []string           `json:"categories" doc:"Every category the company has used"`
	Warnings   []domain.Warning   `json:"warnings,omitempty" doc:"Ignored filters"`
}

// ListActivitiesOutput wraps the list for Huma.
type ListActivitiesOutput struct {
	Body ListActivitiesResponse
}

// CreateActivityRequest is the activity form.
type CreateActivityRequest struct {
	Title         string   `json:"title,omitempty" doc:"Short title, at most 100 characters"`
	Category      string   `json:"category,omitempty" doc:"Activity category"`
	Description   string   `json:"description,omitempty" doc:"Optional description; HTML is converted to markdown"`
	Date          string   `json:"date,omitempty" doc:"Activity date (YYYY-MM-DD)"`
	EmissionValue *float64 `json:"emission_value,omitempty" doc:"Emission amount, not negative"`
	EmissionUnit  string   `json:"emission_unit,omitempty" doc:"kg or tonnes"`
}

// CreateActivityInput wraps the activity form for Huma.
type CreateActivityInput struct {
	Body CreateActivityRequest
}

// ActivityOutput wraps a single activity for Huma.
type ActivityOutput struct {
	Body ActivityResponse
}

// SearchActivitiesInput contains the search query.
type SearchActivitiesInput struct {
	Query    string `query:"q" doc:"Search terms"`
	Category string `query:"category" doc:"Only this category"`
	Limit    int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum hits"`
}

// SearchActivitiesOutput wraps the search result for Huma.
type SearchActivitiesOutput struct {
	Body *search.Result
}

// DeleteActivityInput identifies the activity to delete.
type DeleteActivityInput struct {
	ID string `path:"id" doc:"Activity ID"`
}

// === Handlers ===

func (s *Server) handleListActivities(ctx context.Context, input *ListActivitiesInput) (*ListActivitiesOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Activity.ListActivities(ctx, companyID, service.ActivityFilter{
		Category: input.Category,
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
	})
	if err != nil {
		return nil, err
	}

	categories := make([]string, len(list.Categories))
	for i, c := range list.Categories {
		categories[i] = string(c)
	}

	return &ListActivitiesOutput{
		Body: ListActivitiesResponse{
			Activities: mapActivities(list.Activities),
			Categories: categories,
			Warnings:   list.Warnings,
		},
	}, nil
}

func (s *Server) handleCreateActivity(ctx context.Context, input *CreateActivityInput) (*ActivityOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	activity, err := s.services.Activity.CreateActivity(ctx, companyID, service.CreateActivityRequest{
		Title:         input.Body.Title,
		Category:      input.Body.Category,
		Description:   input.Body.Description,
		Date:          input.Body.Date,
		EmissionValue: input.Body.EmissionValue,
		EmissionUnit:  input.Body.EmissionUnit,
	})
	if err != nil {
		return nil, err
	}

	return &ActivityOutput{Body: mapActivity(activity)}, nil
}

func (s *Server) handleSearchActivities(ctx context.Context, input *SearchActivitiesInput) (*SearchActivitiesOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Activity.SearchActivities(ctx, companyID, search.Params{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &SearchActivitiesOutput{Body: result}, nil
}

func (s *Server) handleDeleteActivity(ctx context.Context, input *DeleteActivityInput) (*MessageOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Activity.DeleteActivity(ctx, companyID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Activity deleted successfully"}}, nil
}

// === Helpers ===

func mapActivity(a *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:            a.ID,
		Title:         a.Title,
		Category:      string(a.Category),
		Description:   a.Description,
		Date:          domain.FormatDate(a.Date),
		EmissionValue: a.EmissionValue,
		EmissionUnit:  string(a.EmissionUnit),
		CreatedAt:     a.CreatedAt,
	}
}

func mapActivities(activities []*domain.Activity) []ActivityResponse {
	out := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		out[i] = mapActivity(a)
	}
	return out
}
