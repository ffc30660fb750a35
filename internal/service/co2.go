package service

import (
	"context"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// CO2Provider returns the current global CO2 reading. It never fails.
type CO2Provider interface {
	GetGlobalCO2(ctx context.Context) *domain.CO2Reading
}
