package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

func (s *Server) registerCO2Routes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGlobalCO2",
		Method:      http.MethodGet,
		Path:        "/api/v1/co2",
		Summary:     "Global CO2 level",
		Description: "Returns the latest atmospheric CO2 reading. Never fails: when no source answers, a fallback reading is returned.",
		Tags:        []string{"CO2"},
	}, s.handleGetGlobalCO2)
}

// CO2Output wraps the CO2 reading for Huma.
type CO2Output struct {
	Body *domain.CO2Reading
}

func (s *Server) handleGetGlobalCO2(ctx context.Context, _ *struct{}) (*CO2Output, error) {
	return &CO2Output{Body: s.services.CO2.GetGlobalCO2(ctx)}, nil
}
