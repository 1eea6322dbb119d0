// Package cache stores synthesized audio keyed by lowercased text and voice.
//
// Entries live in two tiers: an in-process table that is always consulted,
// and a durable ObjectStore (a directory or a NATS bucket) used only while the
// cache is enabled. Entries are never evicted.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/logger"
)

// ErrCacheWrite is returned when the durable tier rejects an entry.
var ErrCacheWrite = errors.New("failed to write cache entry")

// Cache is a two-tier, content-addressed audio cache. It is not safe for
// concurrent use; one render session owns one Cache.
type Cache struct {
	store   core.ObjectStore
	memory  map[string][]byte
	log     *logger.Logger
	enabled bool
}

// New creates an enabled cache backed by store.
func New(store core.ObjectStore, log *logger.Logger) *Cache {
	return &Cache{
		store:   store,
		memory:  make(map[string][]byte),
		log:     log,
		enabled: true,
	}
}

// Disable stops all durable reads and writes. The in-process table stays active.
func (c *Cache) Disable() {
	c.enabled = false
}

// Enabled reports whether the durable tier is in use.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get returns the audio stored for (text, model). The in-process table is
// checked first; the durable tier is consulted only when the cache is enabled,
// and a durable hit is copied into the in-process table.
func (c *Cache) Get(ctx context.Context, text, model string) ([]byte, bool) {
	key := Key(text, model)

	data, ok := c.memory[key]
	if ok {
		return data, true
	}

	if !c.enabled || c.store == nil {
		return nil, false
	}

	data, err := c.store.Download(ctx, ObjectName(key))
	if err != nil {
		if !errors.Is(err, core.ErrObjectNotFound) {
			c.log.Warn("Cache read failed for key %s: %v", key, err)
		}

		return nil, false
	}

	c.memory[key] = data

	return data, true
}

// Put records audio for (text, model). The in-process table is always
// updated; the durable tier is written only when the cache is enabled.
func (c *Cache) Put(ctx context.Context, text, model string, audio []byte) error {
	key := Key(text, model)

	c.memory[key] = audio

	if !c.enabled || c.store == nil {
		return nil
	}

	err := c.store.Upload(ctx, ObjectName(key), audio)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrCacheWrite, key, err)
	}

	return nil
}

// Forget drops (text, model) from the in-process table. It is used when a
// stored entry turns out to be corrupt and must be fetched again.
func (c *Cache) Forget(text, model string) {
	delete(c.memory, Key(text, model))
}

// Len returns the number of entries in the in-process table.
func (c *Cache) Len() int {
	return len(c.memory)
}
