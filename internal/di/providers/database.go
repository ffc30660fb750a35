package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/carbontrack/carbontrack-server/internal/bus"
	"github.com/carbontrack/carbontrack-server/internal/config"
	"github.com/carbontrack/carbontrack-server/internal/events"
	"github.com/carbontrack/carbontrack-server/internal/logger"
	"github.com/carbontrack/carbontrack-server/internal/sse"
	"github.com/carbontrack/carbontrack-server/internal/store/cache"
	"github.com/carbontrack/carbontrack-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Manager.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// BusHandle wraps the optional NATS publisher. Publisher is nil when no
// NATS URL is configured.
type BusHandle struct {
	Publisher *bus.Publisher
}

// Shutdown implements do.Shutdownable.
func (h *BusHandle) Shutdown() error {
	if h.Publisher == nil {
		return nil
	}
	return h.Publisher.Close()
}

// ProvideEventBus connects to NATS when configured.
func ProvideEventBus(i do.Injector) (*BusHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Events.NATSURL == "" {
		log.Info("Event bus disabled")
		return &BusHandle{}, nil
	}

	publisher, err := bus.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, log.Logger)
	if err != nil {
		return nil, err
	}
	return &BusHandle{Publisher: publisher}, nil
}

// ProvideEmitter fans domain events out to SSE clients and, when
// configured, the NATS bus.
func ProvideEmitter(i do.Injector) (events.Emitter, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	busHandle := do.MustInvoke[*BusHandle](i)

	if busHandle.Publisher == nil {
		return sseHandle.Manager, nil
	}
	return events.Fanout{sseHandle.Manager, busHandle.Publisher}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the badger cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the key/value cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.Data.CachePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Cache initialized", "path", cfg.Data.CachePath())

	return &CacheHandle{Cache: c}, nil
}
