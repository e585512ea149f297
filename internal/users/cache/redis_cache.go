package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-users/internal/config"
	"ms-users/internal/logger"
	"ms-users/internal/models"
)

const (
	keyPrefix = "user:"
	tombstone = "deleted"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

// Connect opens a client for cfg and verifies it with a PING.
func Connect(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client, nil
}

func userKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get reports false without error on a cache miss, and models.ErrUserNotFound
// when the id carries a deletion marker.
func (c *RedisCache) Get(ctx context.Context, id int64) (*models.User, bool, error) {
	raw, err := c.Client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(raw) == tombstone {
		return nil, false, models.ErrUserNotFound
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false, fmt.Errorf("decode cached user %d: %w", id, err)
	}
	return &user, true, nil
}

// Set overwrites whatever is cached for user.ID, including a deletion marker.
func (c *RedisCache) Set(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, userKey(user.ID), raw, c.TTL).Err()
}

// Fill caches a row read from the store only if the key is empty, so a read
// that raced with a write never replaces the writer's entry.
func (c *RedisCache) Fill(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.Client.SetNX(ctx, userKey(user.ID), raw, c.TTL).Err()
}

// MarkDeleted replaces the entry with a marker that expires after TTL.
func (c *RedisCache) MarkDeleted(ctx context.Context, id int64) error {
	return c.Client.Set(ctx, userKey(id), tombstone, c.TTL).Err()
}
