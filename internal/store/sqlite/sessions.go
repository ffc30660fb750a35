package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

type sessionRow struct {
	ID               string         `db:"id"`
	CompanyID        string         `db:"company_id"`
	RefreshTokenHash string         `db:"refresh_token_hash"`
	ExpiresAt        string         `db:"expires_at"`
	CreatedAt        string         `db:"created_at"`
	LastSeenAt       string         `db:"last_seen_at"`
	IPAddress        sql.NullString `db:"ip_address"`
	UserAgent        sql.NullString `db:"user_agent"`
}

const sessionColumns = `id, company_id, refresh_token_hash, expires_at, created_at,
	last_seen_at, ip_address, user_agent`

func newSessionRow(s *domain.Session) sessionRow {
	return sessionRow{
		ID:               s.ID,
		CompanyID:        s.CompanyID,
		RefreshTokenHash: s.RefreshTokenHash,
		ExpiresAt:        formatTime(s.ExpiresAt),
		CreatedAt:        formatTime(s.CreatedAt),
		LastSeenAt:       formatTime(s.LastSeenAt),
		IPAddress:        nullString(s.IPAddress),
		UserAgent:        nullString(s.UserAgent),
	}
}

func (r *sessionRow) toDomain() (*domain.Session, error) {
	s := &domain.Session{
		ID:               r.ID,
		CompanyID:        r.CompanyID,
		RefreshTokenHash: r.RefreshTokenHash,
		IPAddress:        r.IPAddress.String,
		UserAgent:        r.UserAgent.String,
	}
	var err error
	if s.ExpiresAt, err = parseTime(r.ExpiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if s.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.LastSeenAt, err = parseTime(r.LastSeenAt); err != nil {
		return nil, fmt.Errorf("parse last_seen_at: %w", err)
	}
	return s, nil
}

// CreateSession inserts a new session.
// Returns store.ErrAlreadyExists if the session ID already exists.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (:id, :company_id, :refresh_token_hash, :expires_at, :created_at,
			:last_seen_at, :ip_address, :user_agent)`, newSessionRow(session))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("session already exists")
	}
	return err
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "session")
	}
	return row.toDomain()
}

// GetSessionByRefreshToken retrieves a session by the hash of its refresh token.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, tokenHash)
	if err != nil {
		return nil, notFound(err, "session")
	}
	return row.toDomain()
}

// UpdateSession replaces a session's mutable fields.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE sessions SET
			refresh_token_hash = :refresh_token_hash,
			expires_at = :expires_at,
			last_seen_at = :last_seen_at,
			ip_address = :ip_address,
			user_agent = :user_agent
		WHERE id = :id`, newSessionRow(session))
	if err != nil {
		return err
	}
	return expectAffected(res, "session")
}

// DeleteSession removes a session by id.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "session")
}

// DeleteExpiredSessions removes every session past its expiry and returns how many were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
