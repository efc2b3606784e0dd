package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// VectorCache stores normalized vectors keyed by their input text.
type VectorCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, vec []float32)
}

type redisCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache pings addr and returns a cache scoped to provider+model+dims,
// so changing any of them never serves stale vectors.
func NewRedisCache(ctx context.Context, log *logger.Logger, addr string, ttl time.Duration, cfg Config) (VectorCache, *goredis.Client, error) {
	if addr == "" {
		return nil, nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisCache(log, rdb, ttl, cfg), rdb, nil
}

func newRedisCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration, cfg Config) *redisCache {
	cfg = cfg.withDefaults()
	return &redisCache{
		log:    log.With("component", "EmbeddingCache"),
		rdb:    rdb,
		prefix: fmt.Sprintf("emb:%s:%s:%d:", cfg.Provider, cfg.Model, cfg.Dimensions),
		ttl:    ttl,
	}
}

func (c *redisCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

func (c *redisCache) Get(ctx context.Context, text string) ([]float32, bool) {
	raw, err := c.rdb.Get(ctx, c.key(text)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.WithContext(ctx).Warn("embedding cache read failed", "error", err)
		}
		return nil, false
	}
	decoded, err := DecodeRaw(raw)
	if err != nil {
		c.log.WithContext(ctx).Warn("embedding cache entry unreadable", "error", err)
		return nil, false
	}
	vec, err := decoded.Floats()
	if err != nil {
		return nil, false
	}
	return vec, true
}

func (c *redisCache) Set(ctx context.Context, text string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(text), raw, c.ttl).Err(); err != nil {
		c.log.WithContext(ctx).Warn("embedding cache write failed", "error", err)
	}
}
