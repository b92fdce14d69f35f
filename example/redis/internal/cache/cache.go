package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/quarry-labs/instrumentation-go/example/redis/internal/config"
	otelredis "github.com/quarry-labs/instrumentation-go/redis"
	"github.com/redis/go-redis/v9"
)

// Cache wraps the redis client
type Cache struct {
	client *redis.Client
}

// New creates an instrumented redis client
func New() *Cache {
	client := redis.NewClient(&redis.Options{Addr: config.DefaultAddr})

	otelredis.Instrument(client,
		otelredis.WithDBName(config.DefaultDBName),
		otelredis.WithServerAddress(config.DefaultAddr),
	)

	return &Cache{client: client}
}

// Close closes the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}

// StoreSession writes a session entry with a TTL
func (c *Cache) StoreSession(ctx context.Context, id, payload string) error {
	return c.client.Set(ctx, "session:"+id, payload, 10*time.Minute).Err()
}

// LoadSession reads a session entry; a miss returns ok=false, not an error
func (c *Cache) LoadSession(ctx context.Context, id string) (string, bool, error) {
	val, err := c.client.Get(ctx, "session:"+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// RefreshLeaderboard demonstrates a pipeline span covering several commands
func (c *Cache) RefreshLeaderboard(ctx context.Context) error {
	pipe := c.client.Pipeline()
	pipe.ZIncrBy(ctx, "leaderboard", 1, "alice")
	pipe.ZIncrBy(ctx, "leaderboard", 2, "bob")
	pipe.ZRevRangeWithScores(ctx, "leaderboard", 0, 9)
	_, err := pipe.Exec(ctx)
	return err
}

// Touch pings the server and logs round-trip health
func (c *Cache) Touch(ctx context.Context) {
	if err := c.client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis ping failed: %v", err)
	}
}
