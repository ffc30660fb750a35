package providers

import (
	"github.com/samber/do/v2"
	"golang.org/x/text/language"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/logger"
	"github.com/carbontrack/carbontrack-server/internal/report"
	"github.com/carbontrack/carbontrack-server/internal/service"
	"github.com/carbontrack/carbontrack-server/internal/validation"
)

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, validator, log.Logger), nil
}

// ProvideStatsService provides the statistics engine.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}

// ProvideActivityService provides the activity service.
func ProvideActivityService(i do.Injector) (*service.ActivityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	emitter := do.MustInvoke[events.Emitter](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewActivityService(storeHandle.Store, searchService, emitter, validator, log.Logger), nil
}

// ProvideTargetService provides the target service.
func ProvideTargetService(i do.Injector) (*service.TargetService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	statsService := do.MustInvoke[*service.StatsService](i)
	emitter := do.MustInvoke[events.Emitter](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTargetService(storeHandle.Store, statsService, emitter, validator, log.Logger), nil
}

// ProvideDashboardService provides the dashboard and report service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	statsService := do.MustInvoke[*service.StatsService](i)
	targetService := do.MustInvoke[*service.TargetService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDashboardService(
		storeHandle.Store,
		statsService,
		targetService,
		report.NewRenderer(language.English),
		log.Logger,
	), nil
}
