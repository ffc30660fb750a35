package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

type activityRow struct {
	ID            string         `db:"id"`
	CompanyID     string         `db:"company_id"`
	Title         string         `db:"title"`
	Category      string         `db:"category"`
	Description   sql.NullString `db:"description"`
	Date          string         `db:"date"`
	EmissionValue float64        `db:"emission_value"`
	EmissionUnit  string         `db:"emission_unit"`
	CreatedAt     string         `db:"created_at"`
}

const activityColumns = `id, company_id, title, category, description, date,
	emission_value, emission_unit, created_at`

func (r *activityRow) toDomain() (*domain.Activity, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date for activity %s: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for activity %s: %w", r.ID, err)
	}
	return &domain.Activity{
		ID:            r.ID,
		CompanyID:     r.CompanyID,
		Title:         r.Title,
		Category:      domain.Category(r.Category),
		Description:   r.Description.String,
		Date:          date,
		EmissionValue: r.EmissionValue,
		EmissionUnit:  domain.Unit(r.EmissionUnit),
		CreatedAt:     created,
	}, nil
}

// CreateActivity inserts a new activity.
func (s *Store) CreateActivity(ctx context.Context, a *domain.Activity) error {
	row := activityRow{
		ID:            a.ID,
		CompanyID:     a.CompanyID,
		Title:         a.Title,
		Category:      string(a.Category),
		Description:   nullString(a.Description),
		Date:          domain.FormatDate(a.Date),
		EmissionValue: a.EmissionValue,
		EmissionUnit:  string(a.EmissionUnit),
		CreatedAt:     formatTime(a.CreatedAt),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO activities (`+activityColumns+`)
		VALUES (:id, :company_id, :title, :category, :description, :date,
			:emission_value, :emission_unit, :created_at)`, row)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("activity already exists")
	}
	return err
}

// GetActivity retrieves an activity by id regardless of owner.
// Ownership is checked by the caller.
func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	var row activityRow
	err := s.db.GetContext(ctx, &row, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "activity")
	}
	return row.toDomain()
}

// DeleteActivity removes an activity by id.
func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "activity")
}

// ListActivities returns the activities matching q, newest date first.
func (s *Store) ListActivities(ctx context.Context, q store.ActivityQuery) ([]*domain.Activity, error) {
	var (
		where = []string{"company_id = ?"}
		args  = []any{q.CompanyID}
	)
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}
	if q.DateFrom != nil {
		where = append(where, "date >= ?")
		args = append(args, domain.FormatDate(*q.DateFrom))
	}
	if q.DateTo != nil {
		where = append(where, "date <= ?")
		args = append(args, domain.FormatDate(*q.DateTo))
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	var rows []activityRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	activities := make([]*domain.Activity, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// DistinctCategories returns the categories a company has recorded activities in, sorted.
func (s *Store) DistinctCategories(ctx context.Context, companyID string) ([]domain.Category, error) {
	var cats []string
	err := s.db.SelectContext(ctx, &cats,
		`SELECT DISTINCT category FROM activities WHERE company_id = ? ORDER BY category`, companyID)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	out := make([]domain.Category, len(cats))
	for i, c := range cats {
		out[i] = domain.Category(c)
	}
	return out, nil
}
