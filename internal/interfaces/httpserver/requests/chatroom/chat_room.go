package chatroom

import "time"

// CreateRoomRequest opens a new room and runs the opening AI exchange.
type CreateRoomRequest struct {
	Title          string `json:"title" binding:"required"`
	Topic          string `json:"topic"`
	ModelType      string `json:"model_type"`
	InitialMessage string `json:"initial_message" binding:"required"`
}

// SendMessageRequest appends a user message and requests the AI reply.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateRoomRequest is a partial metadata update; omitted fields are left
// unchanged.
type UpdateRoomRequest struct {
	Title     *string `json:"title"`
	Topic     *string `json:"topic"`
	ModelType *string `json:"model_type"`
}

// MessagePayload is one message in a window replacement.
type MessagePayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content" binding:"required"`
	Sender    string    `json:"sender" binding:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// ReplaceMessagesRequest swaps the room's whole message window.
type ReplaceMessagesRequest struct {
	Messages       []MessagePayload `json:"messages" binding:"required"`
	ConversationID string           `json:"conversation_id"`
	ModelType      string           `json:"model_type"`
}
