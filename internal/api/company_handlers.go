package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCompanyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCompany",
		Method:      http.MethodGet,
		Path:        "/api/v1/company",
		Summary:     "Current company",
		Description: "Returns the profile of the authenticated company",
		Tags:        []string{"Company"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCompany)
}

func (s *Server) handleGetCompany(ctx context.Context, _ *struct{}) (*CompanyOutput, error) {
	companyID, err := GetCompanyID(ctx)
	if err != nil {
		return nil, err
	}

	company, err := s.services.Auth.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return &CompanyOutput{Body: mapCompany(company)}, nil
}
