package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tagsy/tagsy-backend/config"
	"github.com/tagsy/tagsy-backend/internal/app/model"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

// TagCache is a read-through cache of resolved tag records. A nil *TagCache
// is valid and disables caching, so the engine runs without redis.
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis and verifies the connection
func New(cfg *config.RedisConfig) (*TagCache, error) {
	logger.Info("Initializing redis tag cache", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis tag cache ready")
	return &TagCache{client: client, ttl: cfg.CacheTTL}, nil
}

// Client exposes the underlying connection for components that share it,
// such as the popularity scheduler.
func (c *TagCache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Close closes the redis connection
func (c *TagCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func tagKey(serverID, name string) string {
	return fmt.Sprintf("tag:%s:%s", serverID, name)
}

// Get returns the cached record, or nil on miss. Cache failures are logged
// and treated as misses; the store stays authoritative.
func (c *TagCache) Get(ctx context.Context, serverID, name string) *model.Tag {
	if c == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, tagKey(serverID, name)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logger.Warn("Tag cache read failed", map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
			"error":     err.Error(),
		})
		return nil
	}

	var tag model.Tag
	if err := json.Unmarshal(raw, &tag); err != nil {
		logger.Warn("Tag cache entry corrupt, dropping", map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		c.Invalidate(ctx, serverID, name)
		return nil
	}
	return &tag
}

// Set stores the record with the configured TTL
func (c *TagCache) Set(ctx context.Context, tag *model.Tag) {
	if c == nil || tag == nil {
		return
	}

	raw, err := json.Marshal(tag)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, tagKey(tag.ServerID, tag.Tag), raw, c.ttl).Err(); err != nil {
		logger.Warn("Tag cache write failed", map[string]interface{}{
			"server_id": tag.ServerID,
			"tag":       tag.Tag,
			"error":     err.Error(),
		})
	}
}

// Invalidate drops the cached record after any mutation
func (c *TagCache) Invalidate(ctx context.Context, serverID, name string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, tagKey(serverID, name)).Err(); err != nil {
		logger.Warn("Tag cache invalidation failed", map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
			"error":     err.Error(),
		})
	}
}
