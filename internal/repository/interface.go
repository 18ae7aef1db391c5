package repository

import (
	"context"
	"errors"

	"github.com/talkroom/chat-room-service/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// RoomRepository defines the interface for room persistence.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id uint) (*domain.Room, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// FindByMember returns every room whose member list contains the
	// nickname, chats preloaded in ascending created-at order.
	FindByMember(ctx context.Context, nickname string) ([]domain.Room, error)
}

// ChatRepository defines the interface for chat persistence.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	// FindByRoom returns the room's chats matching the filter in
	// ascending created-at order. Range bounds are inclusive.
	FindByRoom(ctx context.Context, filter domain.ChatFilter) ([]domain.Chat, error)
}
