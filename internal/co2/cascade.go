package co2

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// FirstSuccess tries sources in order and returns the first reading produced.
//
// An ordinary source error is logged and the next source is tried. When every
// source fails the fallback reading is returned with Success true. A panicking
// source or a cancelled ctx stops the cascade and yields the fallback with
// Success false and Error set.
func FirstSuccess(ctx context.Context, logger *slog.Logger, now time.Time, sources ...Source) *domain.CO2Reading {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return abnormal(logger, now, src.Name(), err)
		}

		reading, err := fetchRecovered(ctx, src)
		if err != nil {
			var pe *panicError
			if errors.As(err, &pe) {
				return abnormal(logger, now, src.Name(), pe)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return abnormal(logger, now, src.Name(), ctxErr)
			}
			logger.Warn("co2 source failed, trying next", "source", src.Name(), "error", err)
			continue
		}

		if reading.Source == "" {
			reading.Source = src.Name()
		}
		reading.Success = true
		reading.IsFallback = false
		return reading
	}

	logger.Warn("all co2 sources failed, using fallback estimate", "co2_level", domain.FallbackCO2Level)
	return Fallback(now)
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// fetchRecovered calls src.Fetch, turning a panic into a *panicError.
func fetchRecovered(ctx context.Context, src Source) (reading *domain.CO2Reading, err error) {
	defer func() {
		if r := recover(); r != nil {
			reading, err = nil, &panicError{value: r}
		}
	}()

	reading, err = src.Fetch(ctx)
	if err == nil && reading == nil {
		err = fmt.Errorf("%s returned no reading", src.Name())
	}
	return reading, err
}

func abnormal(logger *slog.Logger, now time.Time, source string, err error) *domain.CO2Reading {
	logger.Warn("co2 lookup aborted, using fallback estimate", "source", source, "error", err)
	r := Fallback(now)
	r.Success = false
	r.Error = err.Error()
	return r
}
