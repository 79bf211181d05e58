package chatroom

import (
	"time"

	domainchatroom "lesson-server/services/chat-api/internal/domain/chatroom"
	"lesson-server/services/chat-api/internal/domain/reveal"
	"lesson-server/services/chat-api/internal/utils/functional"
)

// MessageResponse is one message in a room window.
type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomResponse is the API shape of a chat room.
type RoomResponse struct {
	ID             string            `json:"id"`
	Object         string            `json:"object"`
	Title          string            `json:"title"`
	Topic          string            `json:"topic,omitempty"`
	ModelType      string            `json:"model_type,omitempty"`
	ConversationID string            `json:"conversation_id,omitempty"`
	InitialMessage string            `json:"initial_message,omitempty"`
	Messages       []MessageResponse `json:"messages"`
	NearCapacity   bool              `json:"near_capacity"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	IsDeleted      bool              `json:"is_deleted"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty"`
}

// RoomListResponse is a list of rooms.
type RoomListResponse struct {
	Object string         `json:"object"`
	Data   []RoomResponse `json:"data"`
}

// CreateRoomResponse is the result of opening a room. ExchangeError is set
// when the room was created but the opening AI exchange failed.
type CreateRoomResponse struct {
	RoomResponse
	Reply         *MessageResponse `json:"reply,omitempty"`
	ExchangeError string           `json:"exchange_error,omitempty"`
}

// DeletedResponse acknowledges a soft delete.
type DeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// RevealResponse is a reveal view snapshot.
type RevealResponse struct {
	RoomID string      `json:"room_id"`
	View   reveal.View `json:"view"`
}

// NewMessageResponse converts a domain message.
func NewMessageResponse(m domainchatroom.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    string(m.Sender),
		Timestamp: m.Timestamp,
	}
}

// NewRoomResponse converts a domain room.
func NewRoomResponse(room *domainchatroom.ChatRoom) RoomResponse {
	return RoomResponse{
		ID:             room.ID,
		Object:         "chat.room",
		Title:          room.Title,
		Topic:          room.Topic,
		ModelType:      room.ModelType,
		ConversationID: room.ConversationID,
		InitialMessage: room.InitialMessage,
		Messages:       functional.Map(room.Messages, NewMessageResponse),
		NearCapacity:   room.NearCapacity(),
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
		IsDeleted:      room.IsDeleted,
		DeletedAt:      room.DeletedAt,
	}
}

// NewRoomListResponse converts a list of domain rooms.
func NewRoomListResponse(rooms []*domainchatroom.ChatRoom) RoomListResponse {
	return RoomListResponse{
		Object: "list",
		Data:   functional.Map(rooms, NewRoomResponse),
	}
}

// NewDeletedResponse acknowledges a room soft delete.
func NewDeletedResponse(roomID string) DeletedResponse {
	return DeletedResponse{ID: roomID, Object: "room.deleted", Deleted: true}
}
