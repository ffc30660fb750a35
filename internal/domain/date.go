package domain

import (
	"strings"
	"time"
)

// DateLayout is the only accepted calendar-day format.
const DateLayout = "2006-01-02"

// MonthLayout labels a calendar month in trends.
const MonthLayout = "2006-01"

// ParseDate parses an exact YYYY-MM-DD string as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange is an inclusive calendar-day range. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether day falls within the range.
func (r DateRange) Contains(day time.Time) bool {
	if r.From != nil && day.Before(*r.From) {
		return false
	}
	if r.To != nil && day.After(*r.To) {
		return false
	}
	return true
}

// Warning is a non-fatal problem reported alongside a result.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseDateRange parses optional from/to bounds. A blank bound is open.
// A bound that is not exactly YYYY-MM-DD is dropped and reported as a
// warning; parsing never fails.
func ParseDateRange(from, to string) (DateRange, []Warning) {
	var (
		r        DateRange
		warnings []Warning
	)

	if d, ok, w := parseBound("from_date", "from", from); ok {
		r.From = &d
	} else if w != nil {
		warnings = append(warnings, *w)
	}

	if d, ok, w := parseBound("to_date", "to", to); ok {
		r.To = &d
	} else if w != nil {
		warnings = append(warnings, *w)
	}

	return r, warnings
}

func parseBound(field, label, raw string) (time.Time, bool, *Warning) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, false, &Warning{
			Field:   field,
			Message: "Invalid " + label + " date format. Please use YYYY-MM-DD",
		}
	}
	return d, true, nil
}
