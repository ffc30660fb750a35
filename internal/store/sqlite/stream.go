package sqlite

import (
	"context"
	"iter"

	"github.com/jmoiron/sqlx"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// StreamActivities iterates over every activity of every company in id order.
// A row that fails to decode is yielded as an error and iteration continues.
func (s *Store) StreamActivities(ctx context.Context) iter.Seq2[*domain.Activity, error] {
	return func(yield func(*domain.Activity, error) bool) {
		rows, err := s.db.QueryxContext(ctx,
			`SELECT `+activityColumns+` FROM activities ORDER BY id`)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}
			a, err := scanActivity(rows)
			if !yield(a, err) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func scanActivity(rows *sqlx.Rows) (*domain.Activity, error) {
	var row activityRow
	if err := rows.StructScan(&row); err != nil {
		return nil, err
	}
	return row.toDomain()
}
