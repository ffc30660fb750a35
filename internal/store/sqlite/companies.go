package sqlite

import (
	"context"
	"fmt"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

type companyRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Industry     string `db:"industry"`
	Size         string `db:"size"`
	DateJoined   string `db:"date_joined"`
}

const companyColumns = `id, name, email, password_hash, industry, size, date_joined`

func (r *companyRow) toDomain() (*domain.Company, error) {
	joined, err := parseTime(r.DateJoined)
	if err != nil {
		return nil, fmt.Errorf("parse date_joined: %w", err)
	}
	return &domain.Company{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Industry:     r.Industry,
		Size:         r.Size,
		DateJoined:   joined,
	}, nil
}

// CreateCompany inserts a new company.
// Returns store.ErrAlreadyExists if the id or email is taken.
func (s *Store) CreateCompany(ctx context.Context, c *domain.Company) error {
	row := companyRow{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Industry:     c.Industry,
		Size:         c.Size,
		DateJoined:   formatTime(c.DateJoined),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES (:id, :name, :email, :password_hash, :industry, :size, :date_joined)`, row)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("company already exists")
	}
	return err
}

// GetCompany retrieves a company by id.
func (s *Store) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	var row companyRow
	err := s.db.GetContext(ctx, &row, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return row.toDomain()
}

// GetCompanyByEmail retrieves a company by email, case-insensitively.
func (s *Store) GetCompanyByEmail(ctx context.Context, email string) (*domain.Company, error) {
	var row companyRow
	err := s.db.GetContext(ctx, &row, `SELECT `+companyColumns+` FROM companies WHERE email = ?`, email)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return row.toDomain()
}

// CompanyEmailExists reports whether a company is registered with email.
func (s *Store) CompanyEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM companies WHERE email = ?)`, email)
	return exists, err
}
