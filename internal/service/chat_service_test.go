package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/talkroom/chat-room-service/internal/cache"
	"github.com/talkroom/chat-room-service/internal/domain"
	"github.com/talkroom/chat-room-service/internal/repository"
	"github.com/talkroom/chat-room-service/pkg/pubsub"
)

// mockRoomRepo implements repository.RoomRepository for testing.
type mockRoomRepo struct {
	createFunc       func(ctx context.Context, room *domain.Room) error
	getByIDFunc      func(ctx context.Context, id uint) (*domain.Room, error)
	existsFunc       func(ctx context.Context, id uint) (bool, error)
	findByMemberFunc func(ctx context.Context, nickname string) ([]domain.Room, error)
}

func (m *mockRoomRepo) Create(ctx context.Context, room *domain.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	return errors.New("not implemented")
}

func (m *mockRoomRepo) GetByID(ctx context.Context, id uint) (*domain.Room, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRoomRepo) Exists(ctx context.Context, id uint) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, id)
	}
	return false, errors.New("not implemented")
}

func (m *mockRoomRepo) FindByMember(ctx context.Context, nickname string) ([]domain.Room, error) {
	if m.findByMemberFunc != nil {
		return m.findByMemberFunc(ctx, nickname)
	}
	return nil, errors.New("not implemented")
}

// mockChatRepo implements repository.ChatRepository for testing.
type mockChatRepo struct {
	createFunc     func(ctx context.Context, chat *domain.Chat) error
	findByRoomFunc func(ctx context.Context, filter domain.ChatFilter) ([]domain.Chat, error)
}

func (m *mockChatRepo) Create(ctx context.Context, chat *domain.Chat) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, chat)
	}
	return errors.New("not implemented")
}

func (m *mockChatRepo) FindByRoom(ctx context.Context, filter domain.ChatFilter) ([]domain.Chat, error) {
	if m.findByRoomFunc != nil {
		return m.findByRoomFunc(ctx, filter)
	}
	return nil, errors.New("not implemented")
}

// fakeChatCache is a map-backed ChatHistoryCache.
type fakeChatCache struct {
	store map[string]*cache.ChatHistoryResult
}

func newFakeChatCache() *fakeChatCache {
	return &fakeChatCache{store: map[string]*cache.ChatHistoryResult{}}
}

func (c *fakeChatCache) BuildKey(filter domain.ChatFilter) string {
	from, to := "-", "-"
	if filter.From != nil {
		from = filter.From.Format(domain.LocalTimeLayout)
	}
	if filter.To != nil {
		to = filter.To.Format(domain.LocalTimeLayout)
	}
	return fmt.Sprintf("room:%d:%s:%s", filter.RoomID, from, to)
}

func (c *fakeChatCache) Get(_ context.Context, key string) (*cache.ChatHistoryResult, error) {
	if r, ok := c.store[key]; ok {
		return r, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *fakeChatCache) Set(_ context.Context, key string, result *cache.ChatHistoryResult, _ time.Duration) error {
	c.store[key] = result
	return nil
}

func (c *fakeChatCache) Close() error { return nil }

// capturePublisher records published events.
type capturePublisher struct {
	channels []string
	events   []*pubsub.Event
}

func (p *capturePublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.channels = append(p.channels, channel)
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	lt, err := domain.ParseLocalTime(s)
	if err != nil {
		t.Fatalf("ParseLocalTime(%q) failed: %v", s, err)
	}
	return lt.Time
}

func TestChatService_CreateRoom(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     domain.CreateRoomRequest
		wantErr error
	}{
		{
			name: "valid room",
			req:  domain.CreateRoomRequest{Title: "room title", Users: []string{"user1", "user2", "user3"}},
		},
		{
			name:    "blank title",
			req:     domain.CreateRoomRequest{Title: "   ", Users: []string{"user1"}},
			wantErr: ErrInvalidRoom,
		},
		{
			name:    "no users",
			req:     domain.CreateRoomRequest{Title: "room title", Users: []string{}},
			wantErr: ErrInvalidRoom,
		},
		{
			name:    "blank member nickname",
			req:     domain.CreateRoomRequest{Title: "room title", Users: []string{"user1", " "}},
			wantErr: ErrInvalidRoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms := &mockRoomRepo{
				createFunc: func(_ context.Context, room *domain.Room) error {
					room.ID = 100
					return nil
				},
			}
			pub := &capturePublisher{}
			svc := NewChatService(rooms, &mockChatRepo{}, nil, 0, pub)

			info, err := svc.CreateRoom(ctx, &tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateRoom() error = %v, want %v", err, tt.wantErr)
				}
				if len(pub.events) != 0 {
					t.Errorf("CreateRoom() published %d events on failure", len(pub.events))
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateRoom() unexpected error: %v", err)
			}
			if info.ID == 0 {
				t.Error("CreateRoom() should assign an id")
			}
			if info.Title != tt.req.Title {
				t.Errorf("CreateRoom() title = %q, want %q", info.Title, tt.req.Title)
			}
			if len(info.Users) != len(tt.req.Users) {
				t.Fatalf("CreateRoom() users = %v, want %v", info.Users, tt.req.Users)
			}
			for i, u := range tt.req.Users {
				if info.Users[i] != u {
					t.Errorf("CreateRoom() users[%d] = %q, want %q", i, info.Users[i], u)
				}
			}
			if info.Chat == nil || len(info.Chat) != 0 {
				t.Errorf("CreateRoom() chat = %v, want empty list", info.Chat)
			}
			if len(pub.events) != 1 || pub.events[0].Type != pubsub.EventRoomCreated {
				t.Errorf("CreateRoom() events = %v, want one %s", pub.events, pubsub.EventRoomCreated)
			}
		})
	}
}

func TestChatService_FindChatList_RoomNotFound(t *testing.T) {
	rooms := &mockRoomRepo{
		existsFunc: func(_ context.Context, _ uint) (bool, error) { return false, nil },
	}
	svc := NewChatService(rooms, &mockChatRepo{}, nil, 0, nil)

	_, err := svc.FindChatList(context.Background(), domain.ChatFilter{RoomID: 42})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("FindChatList() error = %v, want %v", err, ErrRoomNotFound)
	}
}

func TestChatService_FindChatList_RangeScenario(t *testing.T) {
	createdAt := mustParse(t, "1999-10-10T12:10:10")
	from := mustParse(t, "1999-10-10T00:00:00")
	to := mustParse(t, "1999-10-11T00:00:00")

	rooms := &mockRoomRepo{
		existsFunc: func(_ context.Context, id uint) (bool, error) { return id == 100, nil },
	}
	var gotFilter domain.ChatFilter
	chats := &mockChatRepo{
		findByRoomFunc: func(_ context.Context, filter domain.ChatFilter) ([]domain.Chat, error) {
			gotFilter = filter
			return []domain.Chat{{
				ID:             1,
				RoomID:         100,
				SenderNickname: "nickname",
				Message:        "contents..",
				CreatedAt:      createdAt,
			}}, nil
		},
	}
	svc := NewChatService(rooms, chats, newFakeChatCache(), time.Minute, nil)

	result, err := svc.FindChatList(context.Background(), domain.ChatFilter{RoomID: 100, From: &from, To: &to})
	if err != nil {
		t.Fatalf("FindChatList() unexpected error: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("FindChatList() returned %d chats, want 1", len(result))
	}
	got := result[0]
	if got.ID != 1 || got.Sender != "nickname" || got.Message != "contents.." || got.RoomID != 100 {
		t.Errorf("FindChatList() chat = %+v", got)
	}
	if got.CreatedAt.String() != "1999-10-10T12:10:10" {
		t.Errorf("FindChatList() createdAt = %s, want 1999-10-10T12:10:10", got.CreatedAt)
	}
	if gotFilter.From == nil || !gotFilter.From.Equal(from) || gotFilter.To == nil || !gotFilter.To.Equal(to) {
		t.Errorf("FindChatList() filter bounds not passed through: %+v", gotFilter)
	}
}

func TestChatService_FindChatList_ServesBoundedPastRangeFromCache(t *testing.T) {
	from := mustParse(t, "1999-10-10T00:00:00")
	to := mustParse(t, "1999-10-11T00:00:00")
	filter := domain.ChatFilter{RoomID: 100, From: &from, To: &to}

	rooms := &mockRoomRepo{
		existsFunc: func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
	repoCalls := 0
	chats := &mockChatRepo{
		findByRoomFunc: func(_ context.Context, _ domain.ChatFilter) ([]domain.Chat, error) {
			repoCalls++
			return nil, errors.New("repository should not be hit")
		},
	}

	c := newFakeChatCache()
	want := domain.ChatInfo{ID: 7, Sender: "john", Message: "hello", RoomID: 100}
	c.store[c.BuildKey(filter)] = &cache.ChatHistoryResult{Chats: []domain.ChatInfo{want}}

	svc := NewChatService(rooms, chats, c, time.Minute, nil)

	result, err := svc.FindChatList(context.Background(), filter)
	if err != nil {
		t.Fatalf("FindChatList() unexpected error: %v", err)
	}
	if repoCalls != 0 {
		t.Errorf("FindChatList() hit the repository %d times for a cached range", repoCalls)
	}
	if len(result) != 1 || result[0].ID != want.ID {
		t.Errorf("FindChatList() = %+v, want cached %+v", result, want)
	}
}

// failingChatCache errors on every operation, as a broken redis would.
type failingChatCache struct {
	fakeChatCache
}

func (c *failingChatCache) Get(_ context.Context, _ string) (*cache.ChatHistoryResult, error) {
	return nil, errors.New("connection refused")
}

func (c *failingChatCache) Set(_ context.Context, _ string, _ *cache.ChatHistoryResult, _ time.Duration) error {
	return errors.New("connection refused")
}

func TestChatService_FindChatList_DegradesToRepoOnCacheError(t *testing.T) {
	from := mustParse(t, "1999-10-10T00:00:00")
	to := mustParse(t, "1999-10-11T00:00:00")
	filter := domain.ChatFilter{RoomID: 100, From: &from, To: &to}

	rooms := &mockRoomRepo{
		existsFunc: func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
	chats := &mockChatRepo{
		findByRoomFunc: func(_ context.Context, _ domain.ChatFilter) ([]domain.Chat, error) {
			return []domain.Chat{
				{ID: 7, RoomID: 100, SenderNickname: "john", Message: "hello", CreatedAt: mustParse(t, "1999-10-10T12:10:10")},
			}, nil
		},
	}

	svc := NewChatService(rooms, chats, &failingChatCache{}, time.Minute, nil)

	result, err := svc.FindChatList(context.Background(), filter)
	if err != nil {
		t.Fatalf("FindChatList() with a broken cache should fall back to the repository, got error: %v", err)
	}
	if len(result) != 1 || result[0].ID != 7 || result[0].Message != "hello" {
		t.Errorf("FindChatList() = %+v, want the repository's single chat", result)
	}
}

func TestChatService_FindChatList_UnboundedSkipsCache(t *testing.T) {
	rooms := &mockRoomRepo{
		existsFunc: func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
	repoCalls := 0
	chats := &mockChatRepo{
		findByRoomFunc: func(_ context.Context, _ domain.ChatFilter) ([]domain.Chat, error) {
			repoCalls++
			return []domain.Chat{}, nil
		},
	}
	svc := NewChatService(rooms, chats, newFakeChatCache(), time.Minute, nil)

	if _, err := svc.FindChatList(context.Background(), domain.ChatFilter{RoomID: 1}); err != nil {
		t.Fatalf("FindChatList() unexpected error: %v", err)
	}
	if _, err := svc.FindChatList(context.Background(), domain.ChatFilter{RoomID: 1}); err != nil {
		t.Fatalf("FindChatList() unexpected error: %v", err)
	}
	if repoCalls != 2 {
		t.Errorf("FindChatList() repo calls = %d, want 2 (unbounded queries are never cached)", repoCalls)
	}
}

func TestChatService_FindRoomList(t *testing.T) {
	memberRooms := []domain.Room{
		{ID: 100, Title: "room title", Users: []string{"nickname", "john"}},
	}
	rooms := &mockRoomRepo{
		findByMemberFunc: func(_ context.Context, nickname string) ([]domain.Room, error) {
			if nickname == "nickname" {
				return memberRooms, nil
			}
			return []domain.Room{}, nil
		},
	}
	svc := NewChatService(rooms, &mockChatRepo{}, nil, 0, nil)

	t.Run("member sees their rooms", func(t *testing.T) {
		infos, err := svc.FindRoomList(context.Background(), "nickname")
		if err != nil {
			t.Fatalf("FindRoomList() unexpected error: %v", err)
		}
		if len(infos) != 1 || infos[0].ID != 100 || infos[0].Title != "room title" {
			t.Errorf("FindRoomList() = %+v", infos)
		}
		if infos[0].Chat == nil {
			t.Error("FindRoomList() chat list must not be nil")
		}
	})

	t.Run("non-member gets empty list, not an error", func(t *testing.T) {
		infos, err := svc.FindRoomList(context.Background(), "stranger")
		if err != nil {
			t.Fatalf("FindRoomList() unexpected error: %v", err)
		}
		if len(infos) != 0 {
			t.Errorf("FindRoomList() = %+v, want empty", infos)
		}
	})
}

func TestChatService_SaveChat(t *testing.T) {
	room := &domain.Room{ID: 100, Title: "room title", Users: []string{"user1", "user2"}}
	rooms := &mockRoomRepo{
		getByIDFunc: func(_ context.Context, id uint) (*domain.Room, error) {
			if id == room.ID {
				return room, nil
			}
			return nil, repository.ErrRoomNotFound
		},
	}

	tests := []struct {
		name    string
		sender  string
		req     domain.SaveChatRequest
		wantErr error
	}{
		{
			name:   "member saves a chat",
			sender: "user1",
			req:    domain.SaveChatRequest{RoomID: 100, Message: "hello"},
		},
		{
			name:    "unknown room",
			sender:  "user1",
			req:     domain.SaveChatRequest{RoomID: 999, Message: "hello"},
			wantErr: ErrRoomNotFound,
		},
		{
			name:    "blank message",
			sender:  "user1",
			req:     domain.SaveChatRequest{RoomID: 100, Message: "  "},
			wantErr: ErrInvalidChat,
		},
		{
			name:    "sender not a member",
			sender:  "stranger",
			req:     domain.SaveChatRequest{RoomID: 100, Message: "hello"},
			wantErr: ErrNotRoomMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved *domain.Chat
			chats := &mockChatRepo{
				createFunc: func(_ context.Context, chat *domain.Chat) error {
					chat.ID = 1
					saved = chat
					return nil
				},
			}
			pub := &capturePublisher{}
			svc := NewChatService(rooms, chats, nil, 0, pub)

			before := time.Now()
			info, err := svc.SaveChat(context.Background(), tt.sender, &tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SaveChat() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("SaveChat() unexpected error: %v", err)
			}
			if info.Sender != tt.sender || info.RoomID != tt.req.RoomID {
				t.Errorf("SaveChat() = %+v", info)
			}
			if saved == nil || saved.CreatedAt.Before(before) {
				t.Error("SaveChat() must assign a server-side timestamp")
			}
			if len(pub.events) != 1 || pub.events[0].Type != pubsub.EventChatCreated {
				t.Errorf("SaveChat() events = %v, want one %s", pub.events, pubsub.EventChatCreated)
			}
		})
	}
}

func TestChatService_SaveChat_TimestampsNeverGoBackwards(t *testing.T) {
	room := &domain.Room{ID: 1, Title: "t", Users: []string{"u"}}
	rooms := &mockRoomRepo{
		getByIDFunc: func(_ context.Context, _ uint) (*domain.Room, error) { return room, nil },
	}
	var stamps []time.Time
	chats := &mockChatRepo{
		createFunc: func(_ context.Context, chat *domain.Chat) error {
			chat.ID = uint(len(stamps) + 1)
			stamps = append(stamps, chat.CreatedAt)
			return nil
		},
	}
	svc := NewChatService(rooms, chats, nil, 0, nil)

	for i := 0; i < 50; i++ {
		if _, err := svc.SaveChat(context.Background(), "u", &domain.SaveChatRequest{RoomID: 1, Message: "m"}); err != nil {
			t.Fatalf("SaveChat() unexpected error: %v", err)
		}
	}

	for i := 1; i < len(stamps); i++ {
		if stamps[i].Before(stamps[i-1]) {
			t.Fatalf("timestamp %d (%v) is before timestamp %d (%v)", i, stamps[i], i-1, stamps[i-1])
		}
	}
}
