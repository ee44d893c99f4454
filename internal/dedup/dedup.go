// Package dedup drops webhook deliveries that were already processed.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/storage"
)

// Deduplicator checks message ids against an in-process cache first and the
// processed_events table second.
type Deduplicator struct {
	cache *bigcache.BigCache
	store storage.Store
	log   *zap.Logger
}

// New creates a deduplicator remembering ids for ttl in memory.
func New(ctx context.Context, store storage.Store, ttl time.Duration, log *zap.Logger) (*Deduplicator, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dedup: create cache: %w", err)
	}
	return &Deduplicator{cache: cache, store: store, log: log}, nil
}

// FirstDelivery reports whether id is new and records it. Messages without
// an id are always new. On storage errors the message is let through.
func (d *Deduplicator) FirstDelivery(ctx context.Context, id string) bool {
	if id == "" {
		return true
	}

	if _, err := d.cache.Get(id); err == nil {
		return false
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		d.log.Warn("dedup cache read failed", zap.Error(err))
	}

	fresh, err := d.store.MarkEventProcessed(ctx, id)
	if err != nil {
		d.log.Error("failed to record processed event", zap.String("event_id", id), zap.Error(err))
		return true
	}
	if err := d.cache.Set(id, []byte{1}); err != nil {
		d.log.Warn("dedup cache write failed", zap.Error(err))
	}
	return fresh
}

// Close stops the cache cleaner.
func (d *Deduplicator) Close() error {
	return d.cache.Close()
}
