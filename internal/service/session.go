package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/domain"
	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/id"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

// SessionCleanupInterval is how often expired sessions are purged.
const SessionCleanupInterval = time.Hour

// SessionService handles refresh-token sessions and their lifecycle.
type SessionService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewSessionService creates a new session management service.
func NewSessionService(store store.Store, tokenService *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SessionResponse contains session tokens and metadata.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // Seconds until access token expires
	SessionID    string `json:"session_id"`
}

// CreateSession generates tokens and opens a new session for a company.
func (s *SessionService) CreateSession(ctx context.Context, company *domain.Company, client auth.ClientInfo) (*SessionResponse, error) {
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	accessToken, err := s.tokenService.GenerateAccessToken(company, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		CompanyID:        company.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        client.IPAddress,
		UserAgent:        client.UserAgent,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return s.response(accessToken, refreshToken, sessionID), nil
}

// RefreshSession rotates tokens for an existing session.
// The presented refresh token stops working once this returns.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string, client auth.ClientInfo) (*SessionResponse, *domain.Company, error) {
	session, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.TokenExpired("invalid or expired refresh token")
		}
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}
	if session.IsExpired() {
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, nil, domainerrors.TokenExpired("invalid or expired refresh token")
	}

	company, err := s.store.GetCompany(ctx, session.CompanyID)
	if err != nil {
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, nil, domainerrors.Unauthorized("company not found").WithCause(err)
	}

	accessToken, err := s.tokenService.GenerateAccessToken(company, session.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	newRefreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	session.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
	session.Touch()
	if client.IPAddress != "" {
		session.IPAddress = client.IPAddress
	}
	if client.UserAgent != "" {
		session.UserAgent = client.UserAgent
	}

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}

	return s.response(accessToken, newRefreshToken, session.ID), company, nil
}

// ValidateSession reports an error unless sessionID names a live session
// belonging to companyID.
func (s *SessionService) ValidateSession(ctx context.Context, sessionID, companyID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.Unauthorized("session has been revoked")
		}
		return fmt.Errorf("get session: %w", err)
	}
	if session.CompanyID != companyID || session.IsExpired() {
		return domainerrors.Unauthorized("session has been revoked")
	}
	return nil
}

// DeleteSession ends a session (logout). Deleting a missing session is not an error.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

// DeleteExpiredSessions removes all expired sessions.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int, error) {
	count, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	if count > 0 {
		s.logger.Info("deleted expired sessions", "count", count)
	}

	return count, nil
}

// RunCleanup purges expired sessions every interval until ctx is done.
func (s *SessionService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SessionCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.DeleteExpiredSessions(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

func (s *SessionService) response(accessToken, refreshToken, sessionID string) *SessionResponse {
	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenService.AccessTokenDuration().Seconds()),
		SessionID:    sessionID,
	}
}
