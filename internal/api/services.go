package api

import (
	"context"

	"github.com/carbontrack/carbontrack-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth      *service.AuthService
	Activity  *service.ActivityService
	Target    *service.TargetService
	Stats     *service.StatsService
	Dashboard *service.DashboardService
	Search    *service.SearchService
	CO2       service.CO2Provider // Global CO2 ticker, never fails
}

// Pinger is a backing component that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecks are the components /health probes besides the search index
// and the SSE manager. A nil entry is reported as not configured.
type HealthChecks struct {
	Database Pinger
	Cache    Pinger
	Bus      Pinger // Optional NATS publisher
}
