// Package store defines the persistence interfaces for the CarbonTrack server.
package store

import (
	"context"
	"iter"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// EmissionReader is the read side consumed by the statistics and reporting services.
type EmissionReader interface {
	// ListActivities returns matching activities ordered by date descending,
	// then by creation time descending.
	ListActivities(ctx context.Context, q ActivityQuery) ([]*domain.Activity, error)
	// ListTargets returns matching targets ordered by category, then target date.
	ListTargets(ctx context.Context, q TargetQuery) ([]*domain.EmissionTarget, error)
}

// CompanyStore persists tenant accounts.
type CompanyStore interface {
	CreateCompany(ctx context.Context, company *domain.Company) error
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	GetCompanyByEmail(ctx context.Context, email string) (*domain.Company, error)
	CompanyEmailExists(ctx context.Context, email string) (bool, error)
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// ActivityStore persists activities.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *domain.Activity) error
	GetActivity(ctx context.Context, id string) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, id string) error
	DistinctCategories(ctx context.Context, companyID string) ([]domain.Category, error)
	// StreamActivities iterates over all activities of all companies.
	// Used to rebuild the search index.
	StreamActivities(ctx context.Context) iter.Seq2[*domain.Activity, error]
}

// TargetStore persists emission targets.
type TargetStore interface {
	CreateTarget(ctx context.Context, target *domain.EmissionTarget) error
}

// Store defines all persistence operations.
type Store interface {
	EmissionReader
	CompanyStore
	SessionStore
	ActivityStore
	TargetStore

	Ping(ctx context.Context) error
	Close() error
}
