// Package cache provides a Redis-backed cache of definition lookups keyed by
// normalized term. Concurrent misses for the same term are collapsed with
// singleflight so the engine sees each cold term once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/AniruddhAgrahari/open-read/pkg/config"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
	pkgredis "github.com/AniruddhAgrahari/open-read/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "dict:"

// DefinitionCache caches lookup results per normalized term. Keys carry a
// generation number that Invalidate bumps, so a lookup computed before an
// invalidation can only ever be written into the old generation; readers
// already use the new one and never see the stale value.
type DefinitionCache struct {
	client     *pkgredis.Client
	cfg        config.RedisConfig
	group      singleflight.Group
	logger     *slog.Logger
	generation atomic.Int64
	hits       atomic.Int64
	misses     atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *DefinitionCache {
	return &DefinitionCache{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("definition-cache"),
	}
}

func (c *DefinitionCache) Get(ctx context.Context, term string) ([]string, bool) {
	return c.getKey(ctx, term, c.buildKey(term))
}

func (c *DefinitionCache) getKey(ctx context.Context, term, key string) ([]string, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var definitions []string
	if err := json.Unmarshal([]byte(data), &definitions); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "term", term, "key", key)
	return definitions, true
}

func (c *DefinitionCache) Set(ctx context.Context, term string, definitions []string) {
	c.setKey(ctx, c.buildKey(term), definitions)
}

func (c *DefinitionCache) setKey(ctx context.Context, key string, definitions []string) {
	data, err := json.Marshal(definitions)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached definitions for term, computing and
// caching them on a miss. The second return reports whether the result came
// from the cache. The key is fixed before computeFn runs: an invalidation
// landing mid-compute bumps the generation, so the computed value is stored
// under the old generation and current readers never pick it up.
func (c *DefinitionCache) GetOrCompute(
	ctx context.Context,
	term string,
	computeFn func() ([]string, error),
) ([]string, bool, error) {
	key := c.buildKey(term)
	if definitions, ok := c.getKey(ctx, term, key); ok {
		return definitions, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if definitions, ok := c.getKey(ctx, term, key); ok {
			return definitions, nil
		}
		definitions, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.setKey(ctx, key, definitions)
		return definitions, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]string), false, nil
}

// Invalidate drops every cached lookup. Called after any successful build,
// insert, or remove so stale definitions never outlive a corpus change. The
// generation is bumped before the flush, retiring keys from in-flight
// computations even when the flush itself fails; abandoned keys are left to
// expire with their TTL.
func (c *DefinitionCache) Invalidate(ctx context.Context) error {
	gen := c.generation.Add(1)
	pattern := keyPrefix + "*"
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "generation", gen, "keys_deleted", deleted)
	return nil
}

func (c *DefinitionCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *DefinitionCache) buildKey(term string) string {
	hash := sha256.Sum256([]byte(term))
	return fmt.Sprintf("%sg%d:%x", keyPrefix, c.generation.Load(), hash[:16])
}
