package store

import (
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// ActivityQuery selects a company's activities. Zero-valued fields do not filter.
type ActivityQuery struct {
	CompanyID string
	Category  domain.Category
	DateFrom  *time.Time // inclusive
	DateTo    *time.Time // inclusive
	Limit     int        // 0 means no limit
}

// ForRange returns a copy of q bounded by r.
func (q ActivityQuery) ForRange(r domain.DateRange) ActivityQuery {
	q.DateFrom = r.From
	q.DateTo = r.To
	return q
}

// TargetQuery selects a company's emission targets.
type TargetQuery struct {
	CompanyID string
	Category  string // "" matches every category including overall
}
