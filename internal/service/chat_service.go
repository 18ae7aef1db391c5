package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/talkroom/chat-room-service/internal/audit"
	"github.com/talkroom/chat-room-service/internal/cache"
	"github.com/talkroom/chat-room-service/internal/domain"
	"github.com/talkroom/chat-room-service/internal/repository"
	"github.com/talkroom/chat-room-service/pkg/log"
	"github.com/talkroom/chat-room-service/pkg/pubsub"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrInvalidRoom   = errors.New("room requires a title and at least one member")
	ErrInvalidChat   = errors.New("chat requires a room and a message")
	ErrNotRoomMember = errors.New("sender is not a member of the room")
)

// chatServiceImpl implements ChatService.
type chatServiceImpl struct {
	rooms     repository.RoomRepository
	chats     repository.ChatRepository
	cache     cache.ChatHistoryCache
	cacheTTL  time.Duration
	publisher pubsub.Publisher
	sf        singleflight.Group

	// clock guard: created-at never goes backwards within the process
	mu   sync.Mutex
	last time.Time
}

// NewChatService creates a new chat service. cache and publisher may be
// nil; the service then skips caching and event publication.
func NewChatService(
	rooms repository.RoomRepository,
	chats repository.ChatRepository,
	historyCache cache.ChatHistoryCache,
	cacheTTL time.Duration,
	publisher pubsub.Publisher,
) ChatService {
	return &chatServiceImpl{
		rooms:     rooms,
		chats:     chats,
		cache:     historyCache,
		cacheTTL:  cacheTTL,
		publisher: publisher,
	}
}

// FindChatList returns the room's chats within the filter range.
func (s *chatServiceImpl) FindChatList(ctx context.Context, filter domain.ChatFilter) ([]domain.ChatInfo, error) {
	exists, err := s.rooms.Exists(ctx, filter.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check room: %w", err)
	}
	if !exists {
		return nil, ErrRoomNotFound
	}

	// Only fully-in-the-past bounded ranges are cacheable: their result
	// can no longer change, so TTL expiry is the only invalidation needed.
	if s.cache != nil && filter.Bounded() && filter.To.Before(time.Now()) {
		return s.findChatListCached(ctx, filter)
	}

	chats, err := s.chats.FindByRoom(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return domain.ChatsToInfo(chats), nil
}

func (s *chatServiceImpl) findChatListCached(ctx context.Context, filter domain.ChatFilter) ([]domain.ChatInfo, error) {
	key := s.cache.BuildKey(filter)

	// Collapse concurrent identical queries onto one fetch.
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.fetchWithCache(ctx, filter, key)
	})
	if err != nil {
		return nil, err
	}

	cached, ok := result.(*cache.ChatHistoryResult)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return cached.Chats, nil
}

func (s *chatServiceImpl) fetchWithCache(ctx context.Context, filter domain.ChatFilter, key string) (*cache.ChatHistoryResult, error) {
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Degrade to the repository on cache trouble.
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache get error")
	}

	chats, err := s.chats.FindByRoom(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	result := &cache.ChatHistoryResult{Chats: domain.ChatsToInfo(chats)}

	// Store asynchronously so a slow cache never delays the response.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, key, result, s.cacheTTL); err != nil {
			logger := log.L()
			logger.Warn().Err(err).Msg("cache set error")
		}
	}()

	return result, nil
}

// CreateRoom creates a new room.
func (s *chatServiceImpl) CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.RoomInfo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(req.Users) == 0 {
		return nil, ErrInvalidRoom
	}
	users := make([]string, len(req.Users))
	for i, u := range req.Users {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, ErrInvalidRoom
		}
		users[i] = u
	}

	room := &domain.Room{
		Title: title,
		Users: users,
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.publishEvent(ctx, pubsub.EventRoomCreated, room.ID, pubsub.RoomCreatedPayload{
		RoomID: room.ID,
		Title:  room.Title,
		Users:  room.Users,
	})
	audit.LogWithDetail(ctx, audit.ActionCreateRoom, users[0], title, "room created")

	info := room.ToInfo()
	return &info, nil
}

// FindRoomList returns every room the nickname belongs to.
func (s *chatServiceImpl) FindRoomList(ctx context.Context, nickname string) ([]domain.RoomInfo, error) {
	rooms, err := s.rooms.FindByMember(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	infos := make([]domain.RoomInfo, len(rooms))
	for i := range rooms {
		infos[i] = rooms[i].ToInfo()
	}
	return infos, nil
}

// SaveChat stores a message in a room the sender belongs to.
func (s *chatServiceImpl) SaveChat(ctx context.Context, sender string, req *domain.SaveChatRequest) (*domain.ChatInfo, error) {
	message := strings.TrimSpace(req.Message)
	if req.RoomID == 0 || message == "" {
		return nil, ErrInvalidChat
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if !room.HasMember(sender) {
		return nil, ErrNotRoomMember
	}

	chat := &domain.Chat{
		RoomID:         room.ID,
		SenderNickname: sender,
		Message:        message,
		CreatedAt:      s.now(),
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}

	s.publishEvent(ctx, pubsub.EventChatCreated, room.ID, pubsub.ChatCreatedPayload{
		ChatID: chat.ID,
		RoomID: room.ID,
		Sender: sender,
	})
	audit.Log(ctx, audit.ActionSaveChat, sender, "chat saved")

	info := chat.ToInfo()
	return &info, nil
}

// now returns the current time, never earlier than the previously
// assigned chat timestamp.
func (s *chatServiceImpl) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := time.Now()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// publishEvent emits a domain event. Failures are logged, never
// surfaced: event delivery is best-effort and must not fail the request.
func (s *chatServiceImpl) publishEvent(ctx context.Context, eventType string, roomID uint, payload interface{}) {
	if s.publisher == nil {
		return
	}

	event, err := pubsub.NewEvent(eventType, roomID, payload)
	if err != nil {
		logger := log.Ctx(ctx)
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}

	if err := s.publisher.Publish(ctx, pubsub.RoomEventsChannel(roomID), event); err != nil {
		logger := log.Ctx(ctx)
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}
