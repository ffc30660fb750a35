package co2

import (
	"context"
	"log/slog"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// ReadingCache stores the latest live reading between lookups.
type ReadingCache interface {
	CO2Reading(ctx context.Context) (*domain.CO2Reading, bool, error)
	SetCO2Reading(ctx context.Context, r *domain.CO2Reading, ttl time.Duration) error
}

// Config selects the cascade's sources.
type Config struct {
	MonthlyURL string
	WeeklyURL  string
	PageURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// Ticker answers global CO2 lookups from the cache or the source cascade.
type Ticker struct {
	sources []Source
	cache   ReadingCache
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewTicker creates a ticker over sources, tried in order. cache may be nil.
func NewTicker(sources []Source, cache ReadingCache, ttl time.Duration, logger *slog.Logger) *Ticker {
	return &Ticker{
		sources: sources,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// DefaultSources builds the monthly, weekly, page cascade from cfg.
// A source with an empty URL is left out.
func DefaultSources(cfg Config, f *Fetcher) []Source {
	var sources []Source
	if cfg.MonthlyURL != "" {
		sources = append(sources, TextSource(SourceMonthly, cfg.MonthlyURL, f, ParseMonthly))
	}
	if cfg.WeeklyURL != "" {
		sources = append(sources, TextSource(SourceWeekly, cfg.WeeklyURL, f, ParseWeekly))
	}
	if cfg.PageURL != "" {
		sources = append(sources, PageSource(cfg.PageURL, f, time.Now))
	}
	return sources
}

// Sources returns the names of the configured sources in cascade order.
func (t *Ticker) Sources() []string {
	names := make([]string, len(t.sources))
	for i, s := range t.sources {
		names[i] = s.Name()
	}
	return names
}

// GetGlobalCO2 returns the latest reading. It never fails: cache errors are
// logged and ignored, and source failures end in the fallback estimate.
// Only live readings are cached.
func (t *Ticker) GetGlobalCO2(ctx context.Context) *domain.CO2Reading {
	if t.cache != nil {
		cached, ok, err := t.cache.CO2Reading(ctx)
		if err != nil {
			t.logger.Warn("co2 cache read failed", "error", err)
		} else if ok {
			return cached
		}
	}

	reading := FirstSuccess(ctx, t.logger, t.now(), t.sources...)

	if t.cache != nil && reading.Success && !reading.IsFallback && t.ttl > 0 {
		if err := t.cache.SetCO2Reading(ctx, reading, t.ttl); err != nil {
			t.logger.Warn("co2 cache write failed", "error", err)
		}
	}

	return reading
}
