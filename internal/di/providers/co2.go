package providers

import (
	"github.com/samber/do/v2"

	"github.com/carbontrack/carbontrack-server/internal/co2"
	"github.com/carbontrack/carbontrack-server/internal/config"
	"github.com/carbontrack/carbontrack-server/internal/logger"
)

// CO2FetcherHandle wraps the outbound CO2 fetcher with shutdown capability.
type CO2FetcherHandle struct {
	*co2.Fetcher
}

// Shutdown implements do.Shutdownable.
func (h *CO2FetcherHandle) Shutdown() error {
	h.Fetcher.Close()
	return nil
}

// ProvideCO2Fetcher provides the rate-limited HTTP fetcher for CO2 sources.
func ProvideCO2Fetcher(i do.Injector) (*CO2FetcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &CO2FetcherHandle{Fetcher: co2.NewFetcher(cfg.CO2.Timeout, log.Logger)}, nil
}

// ProvideCO2Ticker provides the global CO2 ticker backed by the cache.
func ProvideCO2Ticker(i do.Injector) (*co2.Ticker, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fetcher := do.MustInvoke[*CO2FetcherHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	ticker := co2.NewTicker(
		co2.DefaultSources(co2.Config{
			MonthlyURL: cfg.CO2.MonthlyURL,
			WeeklyURL:  cfg.CO2.WeeklyURL,
			PageURL:    cfg.CO2.PageURL,
			Timeout:    cfg.CO2.Timeout,
			CacheTTL:   cfg.CO2.CacheTTL,
		}, fetcher.Fetcher),
		cacheHandle.Cache,
		cfg.CO2.CacheTTL,
		log.Logger,
	)

	log.Info("CO2 ticker configured", "sources", ticker.Sources(), "cache_ttl", cfg.CO2.CacheTTL)

	return ticker, nil
}
