package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/service"
)

func (s *Server) registerTargetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTargets",
		Method:      http.MethodGet,
		Path:        "/api/v1/targets",
		Summary:     "List targets",
		Description: "Returns the company's targets, each compared with its current emissions",
		Tags:        []string{"Targets"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTargets)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTarget",
		Method:        http.MethodPost,
		Path:          "/api/v1/targets",
		Summary:       "Set target",
		Description:   "Sets an emission target, either overall or for one category",
		Tags:          []string{"Targets"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTarget)
}

// === DTOs ===

// TargetResponse is a target in API responses.
type TargetResponse struct {
	ID               string   `json:"id" doc:"Target ID"`
	Category         string   `json:"category" doc:"overall or an activity category"`
	TargetValue      float64  `json:"target_value" doc:"Goal emission amount"`
	TargetUnit       string   `json:"target_unit" doc:"kg or tonnes"`
	TargetDate       string   `json:"target_date" doc:"Deadline (YYYY-MM-DD)"`
	CurrentEmissions *float64 `json:"current_emissions,omitempty" doc:"Emissions recorded so far in the target's scope"`
	OnTrack          *bool    `json:"on_track,omitempty" doc:"Whether current emissions are within the target"`
}

// ListTargetsOutput wraps the target list for Huma.
type ListTargetsOutput struct {
	Body []TargetResponse
}

// CreateTargetRequest is the target form.
type CreateTargetRequest struct {
	TargetValue *float64 `json:"target_value,omitempty" doc:"Goal emission amount, not negative"`
	TargetUnit  string   `json:"target_unit,omitempty" doc:"kg or tonnes"`
	TargetDate  string   `json:"target_date,omitempty" doc:"Deadline (YYYY-MM-DD)"`
	Category    string   `json:"category,omitempty" doc:"overall or an activity category"`
}

// CreateTargetInput wraps the target form for Huma.
type CreateTargetInput struct {
	Body CreateTargetRequest
}

// TargetOutput wraps a single target for Huma.
type TargetOutput struct {
	Body TargetResponse
}

// === Handlers ===

func (s *Server) handleListTargets(ctx context.Context, _ *struct{}) (*ListTargetsOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	targets, err := s.services.Target.ListTargets(ctx, companyID)
	if err != nil {
		return nil, err
	}

	out := make([]TargetResponse, len(targets))
	for i, p := range targets {
		out[i] = mapTargetProgress(p)
	}

	return &ListTargetsOutput{Body: out}, nil
}

func (s *Server) handleCreateTarget(ctx context.Context, input *CreateTargetInput) (*TargetOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	target, err := s.services.Target.CreateTarget(ctx, companyID, service.CreateTargetRequest{
		TargetValue: input.Body.TargetValue,
		TargetUnit:  input.Body.TargetUnit,
		TargetDate:  input.Body.TargetDate,
		Category:    input.Body.Category,
	})
	if err != nil {
		return nil, err
	}

	return &TargetOutput{Body: mapTarget(target)}, nil
}

// === Helpers ===

func mapTarget(t *domain.EmissionTarget) TargetResponse {
	return TargetResponse{
		ID:          t.ID,
		Category:    t.Category,
		TargetValue: t.TargetValue,
		TargetUnit:  string(t.TargetUnit),
		TargetDate:  domain.FormatDate(t.TargetDate),
	}
}

func mapTargetProgress(p service.TargetProgress) TargetResponse {
	resp := mapTarget(p.EmissionTarget)
	resp.CurrentEmissions = &p.CurrentEmissions
	resp.OnTrack = &p.OnTrack
	return resp
}
