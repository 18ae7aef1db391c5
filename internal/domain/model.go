package domain

import (
	"time"

	"github.com/talkroom/chat-room-service/pkg/database"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID        uint                 `gorm:"primaryKey;autoIncrement"`
	Title     string               `gorm:"type:varchar(200);not null"`
	Users     database.StringArray `gorm:"type:text;not null"`
	Chats     []ChatModel          `gorm:"foreignKey:RoomID"`
	CreatedAt time.Time            `gorm:"autoCreateTime"`
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "rooms"
}

// ChatModel is the GORM model for the chats table. RoomID is a
// non-owning back-reference; the room owns the chat's lifecycle.
type ChatModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	RoomID         uint      `gorm:"index;not null"`
	SenderNickname string    `gorm:"type:varchar(50);not null"`
	Message        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"index;not null"`
}

// TableName specifies the table name for ChatModel.
func (ChatModel) TableName() string {
	return "chats"
}

// ToDomain converts RoomModel to a domain Room.
func (m *RoomModel) ToDomain() *Room {
	chats := make([]Chat, len(m.Chats))
	for i := range m.Chats {
		chats[i] = *m.Chats[i].ToDomain()
	}
	return &Room{
		ID:        m.ID,
		Title:     m.Title,
		Users:     []string(m.Users),
		Chats:     chats,
		CreatedAt: m.CreatedAt,
	}
}

// RoomToModel converts a domain Room to RoomModel. Chats are not
// carried over; they are created through their own path.
func RoomToModel(r *Room) *RoomModel {
	return &RoomModel{
		ID:        r.ID,
		Title:     r.Title,
		Users:     database.StringArray(r.Users),
		CreatedAt: r.CreatedAt,
	}
}

// ToDomain converts ChatModel to a domain Chat.
func (m *ChatModel) ToDomain() *Chat {
	return &Chat{
		ID:             m.ID,
		RoomID:         m.RoomID,
		SenderNickname: m.SenderNickname,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt,
	}
}

// ChatToModel converts a domain Chat to ChatModel.
func ChatToModel(c *Chat) *ChatModel {
	return &ChatModel{
		ID:             c.ID,
		RoomID:         c.RoomID,
		SenderNickname: c.SenderNickname,
		Message:        c.Message,
		CreatedAt:      c.CreatedAt,
	}
}
