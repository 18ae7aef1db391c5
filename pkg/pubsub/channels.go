package pubsub

import "fmt"

// Channel naming convention: one events channel per room.
const ChannelRoomEvents = "chat:room:%d:events"

// Event types.
const (
	EventRoomCreated = "room_created"
	EventChatCreated = "chat_created"
)

// RoomEventsChannel returns the events channel name for a room.
func RoomEventsChannel(roomID uint) string {
	return fmt.Sprintf(ChannelRoomEvents, roomID)
}

// RoomCreatedPayload is published when a new room is created.
type RoomCreatedPayload struct {
	RoomID uint     `json:"room_id"`
	Title  string   `json:"title"`
	Users  []string `json:"users"`
}

// ChatCreatedPayload is published when a chat is saved to a room.
type ChatCreatedPayload struct {
	ChatID uint   `json:"chat_id"`
	RoomID uint   `json:"room_id"`
	Sender string `json:"sender"`
}
