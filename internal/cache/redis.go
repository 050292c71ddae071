// Package cache holds the Redis backed webhook event claimer.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClaimer deduplicates webhook events with SETNX keys that expire
// after ttl. The default ttl covers the gateway retry window of three days.
type RedisClaimer struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisClaimer(client *redis.Client, prefix string, ttl time.Duration) *RedisClaimer {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisClaimer{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisClaimer) key(id string) string {
	return strings.Join([]string{r.prefix, "webhook_event", id}, ":")
}

func (r *RedisClaimer) ClaimEvent(ctx context.Context, id string) (bool, error) {
	return r.client.SetNX(ctx, r.key(id), time.Now().Unix(), r.ttl).Result()
}

func (r *RedisClaimer) ReleaseEvent(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisClaimer) Close() error {
	return r.client.Close()
}
