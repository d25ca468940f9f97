// Package cache keeps recent query results in Redis so every dashboard
// refresh does not pay for another storage scan.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryCache stores JSON-encoded result sets keyed by a fingerprint of the
// built SQL. Because the builders take now as a parameter, identical SQL
// means an identical window, so the fingerprint is a sound cache key.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, ttl time.Duration) (*QueryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to Redis at %s: %w", addr, err)
	}
	log.Println("Connected to Redis successfully")
	return &QueryCache{client: client, ttl: ttl}, nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "query:" + hex.EncodeToString(sum[:])
}

// Get loads a cached result set into dest. Returns false on a miss.
func (c *QueryCache) Get(ctx context.Context, query string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading query cache: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decoding cached result: %w", err)
	}
	return true, nil
}

// Set stores a result set under the query's fingerprint.
func (c *QueryCache) Set(ctx context.Context, query string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding result for cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(query), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing query cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *QueryCache) Close() error {
	return c.client.Close()
}
