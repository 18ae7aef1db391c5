package domain

import "time"

// Room is a named chat channel with a member list. Title and members
// are immutable after creation; the room owns its chats.
type Room struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Users     []string  `json:"users"`
	Chats     []Chat    `json:"chats"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether the nickname is in the member list.
func (r *Room) HasMember(nickname string) bool {
	for _, u := range r.Users {
		if u == nickname {
			return true
		}
	}
	return false
}

// CreateRoomRequest represents a create room request.
type CreateRoomRequest struct {
	Title string   `json:"title" binding:"required"`
	Users []string `json:"users" binding:"required,min=1"`
}

// LoginRequest carries the nickname used to open a session.
type LoginRequest struct {
	Nickname string `json:"nickname" binding:"required"`
}

// SessionInfo is the login response payload.
type SessionInfo struct {
	Nickname string `json:"nickname"`
	Token    string `json:"token"`
}

// RoomInfo is a room in API responses, with its chat history projected
// to ChatInfo.
type RoomInfo struct {
	ID    uint       `json:"id"`
	Title string     `json:"title"`
	Users []string   `json:"users"`
	Chat  []ChatInfo `json:"chat"`
}

// ToInfo converts Room to RoomInfo. Users and Chat are never nil so
// they serialise as [] rather than null.
func (r *Room) ToInfo() RoomInfo {
	users := r.Users
	if users == nil {
		users = []string{}
	}
	return RoomInfo{
		ID:    r.ID,
		Title: r.Title,
		Users: users,
		Chat:  ChatsToInfo(r.Chats),
	}
}
