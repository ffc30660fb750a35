// Package cache is a Badger-backed key/value cache with per-entry TTLs.
// Values are encoded with msgpack.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

const co2ReadingKey = "co2:latest"

// ErrClosed is returned by Ping after the cache has been closed.
var ErrClosed = errors.New("cache closed")

// Cache wraps a Badger database instance.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a cache at path. An empty path opens an in-memory cache.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("cache opened", "path", path, "in_memory", path == "")

	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Ping reports whether the cache is usable.
func (c *Cache) Ping(_ context.Context) error {
	if c.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Get decodes the value at key into dest. It reports false when the key is
// missing or expired.
func (c *Cache) Get(key string, dest any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return true, nil
}

// Set stores value at key. A ttl <= 0 stores without expiry.
func (c *Cache) Set(key string, value any, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes key. Missing keys are not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// CO2Reading returns the cached CO2 reading, if one is still fresh.
func (c *Cache) CO2Reading(_ context.Context) (*domain.CO2Reading, bool, error) {
	var r domain.CO2Reading
	ok, err := c.Get(co2ReadingKey, &r)
	if err != nil || !ok {
		return nil, false, err
	}
	return &r, true, nil
}

// SetCO2Reading caches r for ttl.
func (c *Cache) SetCO2Reading(_ context.Context, r *domain.CO2Reading, ttl time.Duration) error {
	return c.Set(co2ReadingKey, r, ttl)
}
