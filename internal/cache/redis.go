package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ytget/yt-server/internal/model"
)

// KeyPrefix prefixes every info cache key in Redis
const KeyPrefix = "ytserver:info:"

// Redis stores info responses as JSON with a TTL
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedis creates a Redis backed cache
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger, ttl: ttl}
}

// Get returns the cached response for key
func (r *Redis) Get(ctx context.Context, key string) (*model.VideoInfoResponse, bool) {
	data, err := r.client.Get(ctx, getInfoKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Failed to read info cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var resp model.VideoInfoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		r.logger.Warn("Failed to unmarshal cached info", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

// Set stores value under key for the cache TTL
func (r *Redis) Set(ctx context.Context, key string, value *model.VideoInfoResponse) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("Failed to marshal info", zap.String("key", key), zap.Error(err))
		return
	}

	if err := r.client.Set(ctx, getInfoKey(key), data, r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to write info cache", zap.String("key", key), zap.Error(err))
	}
}

func getInfoKey(key string) string {
	return KeyPrefix + key
}
