// Package cache keeps recent video info responses so repeated lookups of the
// same URL skip the extraction backend.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/model"
)

// Cache stores info responses by video URL. Failures are treated as misses.
type Cache interface {
	Get(ctx context.Context, key string) (*model.VideoInfoResponse, bool)
	Set(ctx context.Context, key string, value *model.VideoInfoResponse)
}

// New returns the cache named in cfg. client is only used by the redis backend.
func New(cfg config.CacheConfig, client *redis.Client, logger *zap.Logger) (Cache, error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return None{}, nil
	case config.CacheMemory:
		return NewMemory[*model.VideoInfoResponse](cfg.TTL), nil
	case config.CacheRedis:
		if client == nil {
			return nil, fmt.Errorf("redis cache requires a redis client")
		}
		return NewRedis(client, cfg.TTL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// None never stores anything
type None struct{}

// Get always misses
func (None) Get(context.Context, string) (*model.VideoInfoResponse, bool) {
	return nil, false
}

// Set does nothing
func (None) Set(context.Context, string, *model.VideoInfoResponse) {}

// DefaultTTL is used when a cache is created with a non-positive TTL
const DefaultTTL = 10 * time.Minute
