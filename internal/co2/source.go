// Package co2 fetches the latest global atmospheric CO2 concentration.
//
// Readings come from an ordered cascade of sources. The first source that
// produces a reading wins; when none does, a fixed fallback estimate is
// returned. Callers always get a reading, never an error.
package co2

import (
	"context"
	"errors"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// Source names.
const (
	SourceMonthly  = "noaa_monthly"
	SourceWeekly   = "noaa_weekly"
	SourcePage     = "co2_page"
	SourceFallback = "fallback"
)

// Date layouts used in readings.
const (
	monthDateLayout = "January 2006"
	dayDateLayout   = "January 2, 2006"
)

// ErrMalformed reports source content that could not be parsed.
var ErrMalformed = errors.New("co2: malformed source data")

// Source produces a CO2 reading or fails.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*domain.CO2Reading, error)
}

type funcSource struct {
	name string
	fn   func(ctx context.Context) (*domain.CO2Reading, error)
}

func (s funcSource) Name() string { return s.name }

func (s funcSource) Fetch(ctx context.Context) (*domain.CO2Reading, error) { return s.fn(ctx) }

// NewSource adapts fn into a named Source.
func NewSource(name string, fn func(ctx context.Context) (*domain.CO2Reading, error)) Source {
	return funcSource{name: name, fn: fn}
}

// Fallback returns the hardcoded estimate dated at now's month.
func Fallback(now time.Time) *domain.CO2Reading {
	return &domain.CO2Reading{
		CO2Level:   domain.FallbackCO2Level,
		Date:       now.Format(monthDateLayout),
		Trend:      domain.TrendUp,
		Source:     SourceFallback,
		IsFallback: true,
		Success:    true,
	}
}
