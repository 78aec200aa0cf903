// Package cache provides Redis client initialization and a short-lived
// cache for per-user moodboard listings.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/moodboard"
)

// Connect creates a Redis client and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

const boardListPrefix = "boards:"

// DefaultListTTL is how long a user's board listing stays cached.
const DefaultListTTL = 30 * time.Second

// BoardListCache caches saved-board listings per user. Listings are
// rebuilt from object storage on a miss, so every error degrades to a
// miss rather than failing the request.
type BoardListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewBoardListCache creates a listing cache backed by the given client.
// A nil client yields a cache where every lookup misses.
func NewBoardListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BoardListCache {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardListCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached listing for a user, if present.
func (c *BoardListCache) Get(ctx context.Context, userID string) ([]moodboard.Record, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, boardListPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("board list cache get failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	var records []moodboard.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		c.logger.Warn("board list cache decode failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return records, true
}

// Set stores a user's listing with the configured TTL.
func (c *BoardListCache) Set(ctx context.Context, userID string, records []moodboard.Record) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("board list cache encode failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, boardListPrefix+userID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("board list cache set failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Invalidate drops a user's cached listing. Called after saves and
// deletes so the next listing reflects storage.
func (c *BoardListCache) Invalidate(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, boardListPrefix+userID).Err(); err != nil {
		c.logger.Warn("board list cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
