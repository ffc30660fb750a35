package sqlite

import (
	"context"
	"fmt"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

type targetRow struct {
	ID          string  `db:"id"`
	CompanyID   string  `db:"company_id"`
	TargetValue float64 `db:"target_value"`
	TargetUnit  string  `db:"target_unit"`
	TargetDate  string  `db:"target_date"`
	Category    string  `db:"category"`
	CreatedAt   string  `db:"created_at"`
}

const targetColumns = `id, company_id, target_value, target_unit, target_date, category, created_at`

func (r *targetRow) toDomain() (*domain.EmissionTarget, error) {
	date, err := domain.ParseDate(r.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("parse target_date for target %s: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for target %s: %w", r.ID, err)
	}
	return &domain.EmissionTarget{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		TargetValue: r.TargetValue,
		TargetUnit:  domain.Unit(r.TargetUnit),
		TargetDate:  date,
		Category:    r.Category,
		CreatedAt:   created,
	}, nil
}

// CreateTarget inserts a new emission target.
func (s *Store) CreateTarget(ctx context.Context, t *domain.EmissionTarget) error {
	row := targetRow{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		TargetValue: t.TargetValue,
		TargetUnit:  string(t.TargetUnit),
		TargetDate:  domain.FormatDate(t.TargetDate),
		Category:    t.Category,
		CreatedAt:   formatTime(t.CreatedAt),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO emission_targets (`+targetColumns+`)
		VALUES (:id, :company_id, :target_value, :target_unit, :target_date, :category, :created_at)`, row)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("target already exists")
	}
	return err
}

// ListTargets returns the targets matching q ordered by category, then target date.
func (s *Store) ListTargets(ctx context.Context, q store.TargetQuery) ([]*domain.EmissionTarget, error) {
	query := `SELECT ` + targetColumns + ` FROM emission_targets WHERE company_id = ?`
	args := []any{q.CompanyID}
	if q.Category != "" {
		query += ` AND category = ?`
		args = append(args, q.Category)
	}
	query += ` ORDER BY category, target_date, created_at`

	var rows []targetRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}

	targets := make([]*domain.EmissionTarget, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
