package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis and verifies the connection. Redis is the
// durable store for live state, so unlike a cache we fail hard when it
// is unreachable.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}

	log.Println("[REDIS] Connected successfully")
	return client, nil
}

// EnableKeyspaceEvents turns on expiry notifications, which drive the
// cleanup cascade. Managed Redis offerings often lock CONFIG down, so a
// failure here is logged rather than fatal; the periodic sweep still
// catches orphans.
func EnableKeyspaceEvents(ctx context.Context, client *redis.Client) {
	if err := client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		log.Printf("[REDIS] Warning: could not enable keyspace notifications: %v", err)
	}
}
