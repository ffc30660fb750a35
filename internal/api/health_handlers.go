package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Component health states.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkPinger(ctx, s.health.Database, "database"),
		"cache":    s.checkPinger(ctx, s.health.Cache, "cache"),
		"search":   s.checkSearchIndex(ctx),
		"events":   s.checkEvents(ctx),
	}

	// The database is the only component the API cannot work without.
	overall := statusHealthy
	for name, c := range components {
		switch {
		case c.Status == statusUnhealthy && name == "database":
			overall = statusUnhealthy
		case c.Status != statusHealthy && overall == statusHealthy:
			overall = statusDegraded
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkPinger reports a component as unhealthy when its ping fails.
func (s *Server) checkPinger(ctx context.Context, p Pinger, name string) ComponentHealth {
	if p == nil {
		return ComponentHealth{
			Status:  statusDegraded,
			Message: name + " not configured",
		}
	}

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("health check failed", "component", name, "error", err)
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: name + " unreachable",
		}
	}

	return ComponentHealth{
		Status:  statusHealthy,
		Latency: latency.String(),
	}
}

// checkSearchIndex verifies the Bleve index is accessible.
func (s *Server) checkSearchIndex(ctx context.Context) ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{
			Status:  statusDegraded,
			Message: "search service not configured",
		}
	}
	return s.checkPinger(ctx, s.services.Search, "search index")
}

// checkEvents reports the SSE manager and, when configured, the NATS bus.
func (s *Server) checkEvents(ctx context.Context) ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{
			Status:  statusDegraded,
			Message: "SSE manager not configured",
		}
	}

	message := formatSSEStatus(s.sseManager.ClientCount())
	if s.health.Bus == nil {
		return ComponentHealth{Status: statusHealthy, Message: message}
	}

	bus := s.checkPinger(ctx, s.health.Bus, "event bus")
	if bus.Status != statusHealthy {
		// Live updates still work without the bus.
		return ComponentHealth{Status: statusDegraded, Latency: bus.Latency, Message: message + ", " + bus.Message}
	}
	bus.Message = message + ", bus connected"
	return bus
}

func formatSSEStatus(count int) string {
	switch count {
	case 0:
		return "no connected clients"
	case 1:
		return "1 connected client"
	default:
		return fmt.Sprintf("%d connected clients", count)
	}
}
