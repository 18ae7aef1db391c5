package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talkroom/chat-room-service/internal/config"
	"github.com/talkroom/chat-room-service/internal/domain"
)

// RedisChatCache implements ChatHistoryCache on Redis.
type RedisChatCache struct {
	client *redis.Client
	prefix string
}

// NewRedisChatCache connects to Redis and returns a chat-history cache.
func NewRedisChatCache(cfg config.RedisConfig, prefix string) (*RedisChatCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisChatCache{
		client: client,
		prefix: prefix,
	}, nil
}

// BuildKey derives the cache key for a bounded history query.
func (c *RedisChatCache) BuildKey(filter domain.ChatFilter) string {
	from, to := "-", "-"
	if filter.From != nil {
		from = filter.From.Format(domain.LocalTimeLayout)
	}
	if filter.To != nil {
		to = filter.To.Format(domain.LocalTimeLayout)
	}
	return fmt.Sprintf("%s:room:%d:chats:%s:%s", c.prefix, filter.RoomID, from, to)
}

// Get retrieves a cached history result.
func (c *RedisChatCache) Get(ctx context.Context, key string) (*ChatHistoryResult, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var result ChatHistoryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &result, nil
}

// Set stores a history result with the given TTL.
func (c *RedisChatCache) Set(ctx context.Context, key string, result *ChatHistoryResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

// Close closes the underlying Redis client.
func (c *RedisChatCache) Close() error {
	return c.client.Close()
}
