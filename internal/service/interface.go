package service

import (
	"context"

	"github.com/talkroom/chat-room-service/internal/domain"
)

// ChatService is the business-logic boundary; every handler routes
// through it.
type ChatService interface {
	// FindChatList returns the room's chats whose created-at falls
	// within the filter's inclusive range, oldest-first. A nonexistent
	// room yields ErrRoomNotFound.
	FindChatList(ctx context.Context, filter domain.ChatFilter) ([]domain.ChatInfo, error)

	// CreateRoom creates a room with an empty chat history and returns
	// its immediate post-creation state.
	CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.RoomInfo, error)

	// FindRoomList returns every room the nickname belongs to, each
	// with its full chat history. No membership is an empty slice, not
	// an error.
	FindRoomList(ctx context.Context, nickname string) ([]domain.RoomInfo, error)

	// SaveChat stores a message authored by sender in a room the
	// sender belongs to, assigning the server-side timestamp.
	SaveChat(ctx context.Context, sender string, req *domain.SaveChatRequest) (*domain.ChatInfo, error)
}
