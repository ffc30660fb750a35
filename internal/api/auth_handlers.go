package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/register",
		Summary:       "Register company",
		Description:   "Creates a new company account. Rate limited per client IP.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Company login",
		Description: "Authenticates a company and returns access and refresh tokens. Rate limited per client IP.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session the access token belongs to",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)
}

// === DTOs ===

// Request fields are optional at the schema level so that missing values
// reach the form validator and come back as per-field messages.

// RegisterRequest is the request body for company registration.
type RegisterRequest struct {
	Name            string `json:"name,omitempty" doc:"Company name"`
	Email           string `json:"email,omitempty" doc:"Login email address"`
	Password        string `json:"password,omitempty" doc:"Password, at least 6 characters"`
	ConfirmPassword string `json:"confirm_password,omitempty" doc:"Must equal password"`
	Industry        string `json:"industry,omitempty" doc:"Industry sector"`
	Size            string `json:"size,omitempty" doc:"Company size: small, medium or large"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for company login.
type LoginRequest struct {
	Email    string `json:"email,omitempty" doc:"Company email"`
	Password string `json:"password,omitempty" doc:"Password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body      LoginRequest
	UserAgent string `header:"User-Agent"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body      RefreshRequest
	UserAgent string `header:"User-Agent"`
}

// CompanyResponse is the public company profile.
type CompanyResponse struct {
	ID         string    `json:"id" doc:"Company ID"`
	Name       string    `json:"name" doc:"Company name"`
	Email      string    `json:"email" doc:"Login email"`
	Industry   string    `json:"industry" doc:"Industry sector"`
	Size       string    `json:"size" doc:"Company size"`
	DateJoined time.Time `json:"date_joined" doc:"Registration timestamp"`
}

// CompanyOutput wraps the company profile for Huma.
type CompanyOutput struct {
	Body CompanyResponse
}

// AuthResponse contains authentication tokens and the company profile.
type AuthResponse struct {
	AccessToken  string          `json:"access_token" doc:"PASETO access token"`
	RefreshToken string          `json:"refresh_token" doc:"Refresh token"`
	SessionID    string          `json:"session_id" doc:"Session identifier"`
	TokenType    string          `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int             `json:"expires_in" doc:"Token expiry in seconds"`
	Company      CompanyResponse `json:"company" doc:"Authenticated company"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*CompanyOutput, error) {
	if err := s.authLimiter.check(clientIPFromContext(ctx)); err != nil {
		return nil, err
	}

	company, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Name:            input.Body.Name,
		Email:           input.Body.Email,
		Password:        input.Body.Password,
		ConfirmPassword: input.Body.ConfirmPassword,
		Industry:        input.Body.Industry,
		Size:            input.Body.Size,
	})
	if err != nil {
		return nil, err
	}

	return &CompanyOutput{Body: mapCompany(company)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	ip := clientIPFromContext(ctx)
	if err := s.authLimiter.check(ip); err != nil {
		s.logger.Warn("login rate limit exceeded", "ip", ip)
		return nil, err
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, auth.ClientInfo{IPAddress: ip, UserAgent: input.UserAgent})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
	}, auth.ClientInfo{IPAddress: clientIPFromContext(ctx), UserAgent: input.UserAgent})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if _, err := GetCompanyID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Auth.Logout(ctx, getSessionID(ctx)); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

// === Helpers ===

func mapCompany(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Industry:   c.Industry,
		Size:       c.Size,
		DateJoined: c.DateJoined,
	}
}

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		Company:      mapCompany(resp.Company),
	}
}
