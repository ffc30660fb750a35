package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/domain"
	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/id"
	"github.com/carbontrack/carbontrack-server/internal/store"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// AuthService handles company registration, login and token verification.
// Session management is delegated to SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		validator:      validator,
		logger:         logger,
	}
}

// RegisterRequest contains company registration data.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=6,max=1024"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Industry        string `json:"industry" validate:"required,oneof=agriculture manufacturing services technology energy transportation retail healthcare finance other"`
	Size            string `json:"size" validate:"required,oneof=small medium large"`
}

// LoginRequest contains company credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains authentication tokens and the company profile.
type AuthResponse struct {
	Company *domain.Company `json:"company"`
	SessionResponse
}

// Register creates a new company account.
// A duplicate email fails validation and nothing is written.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.Company, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.store.CompanyEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, emailTakenError()
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	companyID, err := id.Generate(id.PrefixCompany)
	if err != nil {
		return nil, fmt.Errorf("generate company ID: %w", err)
	}

	company := &domain.Company{
		ID:           companyID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Industry:     req.Industry,
		Size:         req.Size,
		DateJoined:   time.Now().UTC(),
	}

	if err := s.store.CreateCompany(ctx, company); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, emailTakenError()
		}
		return nil, fmt.Errorf("create company: %w", err)
	}

	s.logger.Info("company registered",
		"company_id", company.ID,
		"industry", company.Industry,
	)

	return company, nil
}

// Login authenticates a company and opens a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client auth.ClientInfo) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	company, err := s.store.GetCompanyByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup company: %w", err)
	}

	if !auth.VerifyPassword(company.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, company, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("company logged in",
		"company_id", company.ID,
		"session_id", sessionResp.SessionID,
	)

	return &AuthResponse{Company: company, SessionResponse: *sessionResp}, nil
}

// Refresh exchanges a refresh token for new tokens (rotation).
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest, client auth.ClientInfo) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, company, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, client)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Company: company, SessionResponse: *sessionResp}, nil
}

// Logout revokes the session the access token was issued for.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domainerrors.Unauthorized("no session")
	}
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and checks that its session is still open.
// Used by authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	if err := s.sessionService.ValidateSession(ctx, claims.SessionID, claims.CompanyID); err != nil {
		return nil, err
	}

	return claims, nil
}

// GetCompany returns the profile of the authenticated company.
func (s *AuthService) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("company not found")
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return company, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailTakenError() error {
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"email": "is already registered",
	})
}
