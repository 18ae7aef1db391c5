package cache

import (
	"context"
	"errors"
	"time"

	"github.com/talkroom/chat-room-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ChatHistoryResult is the cached projection of a bounded history query.
type ChatHistoryResult struct {
	Chats []domain.ChatInfo `json:"chats"`
}

// ChatHistoryCache caches bounded chat-history queries.
type ChatHistoryCache interface {
	BuildKey(filter domain.ChatFilter) string
	Get(ctx context.Context, key string) (*ChatHistoryResult, error)
	Set(ctx context.Context, key string, result *ChatHistoryResult, ttl time.Duration) error
	Close() error
}
