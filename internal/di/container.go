// Package di provides dependency injection configuration for the CarbonTrack server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/co2"
	"github.com/carbontrack/carbontrack-server/internal/config"
	"github.com/carbontrack/carbontrack-server/internal/di/providers"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/logger"
	"github.com/carbontrack/carbontrack-server/internal/service"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)

	// Events
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideEventBus)
	do.Provide(injector, providers.ProvideEmitter)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// CO2 ticker
	do.Provide(injector, providers.ProvideCO2Fetcher)
	do.Provide(injector, providers.ProvideCO2Ticker)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideActivityService)
	do.Provide(injector, providers.ProvideTargetService)
	do.Provide(injector, providers.ProvideDashboardService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*validation.Validator](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.BusHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[events.Emitter](injector)
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*co2.Ticker](injector)
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.ActivityService](injector)
	_ = do.MustInvoke[*service.TargetService](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
