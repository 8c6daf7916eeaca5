package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultCache stores JSON values in redis. A nil *ResultCache, or one without
// a client, is a no-op cache.
type ResultCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewResultCache(rdb *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *ResultCache {
	if rdb == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCache{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

// HashKey turns arbitrary input into a fixed-size cache key.
func HashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get decodes the cached value into dst and reports whether it was found.
// Redis failures are logged and treated as a miss.
func (c *ResultCache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("key", c.prefix+key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("cache entry undecodable", zap.String("key", c.prefix+key), zap.Error(err))
		return false
	}
	return true
}

func (c *ResultCache) Set(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", c.prefix+key), zap.Error(err))
	}
}
