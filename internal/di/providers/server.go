package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/carbontrack/carbontrack-server/internal/api"
	"github.com/carbontrack/carbontrack-server/internal/co2"
	"github.com/carbontrack/carbontrack-server/internal/config"
	"github.com/carbontrack/carbontrack-server/internal/logger"
	"github.com/carbontrack/carbontrack-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	busHandle := do.MustInvoke[*BusHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Activity:  do.MustInvoke[*service.ActivityService](i),
		Target:    do.MustInvoke[*service.TargetService](i),
		Stats:     do.MustInvoke[*service.StatsService](i),
		Dashboard: do.MustInvoke[*service.DashboardService](i),
		Search:    do.MustInvoke[*service.SearchService](i),
		CO2:       do.MustInvoke[*co2.Ticker](i),
	}

	health := api.HealthChecks{
		Database: storeHandle.Store,
		Cache:    cacheHandle.Cache,
	}
	// A nil *bus.Publisher must not become a non-nil Pinger.
	if busHandle.Publisher != nil {
		health.Bus = busHandle.Publisher
	}

	handler := api.NewServer(services, sseHandle.Manager, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
		Health:         health,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
