package domain

import "time"

// Chat is a single timestamped message authored by a room member.
// Immutable once created; CreatedAt is always server-assigned.
type Chat struct {
	ID             uint      `json:"id"`
	RoomID         uint      `json:"room_id"`
	SenderNickname string    `json:"sender_nickname"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatFilter selects chats of one room, optionally bounded by an
// inclusive created-at range.
type ChatFilter struct {
	RoomID uint
	From   *time.Time
	To     *time.Time
}

// Bounded reports whether both range ends are set.
func (f ChatFilter) Bounded() bool {
	return f.From != nil && f.To != nil
}

// SaveChatRequest represents a save chat request. The sender comes from
// the session, not the body.
type SaveChatRequest struct {
	RoomID  uint   `json:"roomId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ChatInfo is a chat in API responses.
type ChatInfo struct {
	ID        uint      `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	RoomID    uint      `json:"roomId"`
	CreatedAt LocalTime `json:"createdAt"`
}

// ToInfo converts Chat to ChatInfo.
func (c *Chat) ToInfo() ChatInfo {
	return ChatInfo{
		ID:        c.ID,
		Sender:    c.SenderNickname,
		Message:   c.Message,
		RoomID:    c.RoomID,
		CreatedAt: NewLocalTime(c.CreatedAt),
	}
}

// ChatsToInfo projects a chat slice to ChatInfo, never returning nil so
// an empty history serialises as [].
func ChatsToInfo(chats []Chat) []ChatInfo {
	infos := make([]ChatInfo, len(chats))
	for i := range chats {
		infos[i] = chats[i].ToInfo()
	}
	return infos
}
