package chatroom

import (
	"context"
	"time"

	"lesson-server/services/chat-api/internal/utils/idgen"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// ValidSender reports whether s is one of the known sender values.
func ValidSender(s Sender) bool {
	switch s {
	case SenderUser, SenderAI, SenderSystem:
		return true
	}
	return false
}

// ChatMessage is a single message in a room's window. Messages are immutable
// once appended.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a message with a fresh id and timestamp.
func NewMessage(ctx context.Context, sender Sender, content string) (ChatMessage, error) {
	if !ValidSender(sender) {
		return ChatMessage{}, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "invalid message sender", nil,
			"0f2a7c1e-9b44-4c6a-8d15-3e2b9a61f0d4")
	}
	if content == "" {
		return ChatMessage{}, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "message content must not be empty", nil,
			"6b8d3f52-1c0a-47e9-b7a4-95d2c8e41a3b")
	}
	id, err := idgen.GenerateSecureID(MessageIDPrefix, 16)
	if err != nil {
		return ChatMessage{}, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to generate message id", err,
			"d4e91b07-6a2f-4c83-9f5e-8b1a0c7d62e9")
	}
	return ChatMessage{
		ID:        id,
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}, nil
}

// LatestAssistantMessage returns the newest AI message in the window.
func LatestAssistantMessage(msgs []ChatMessage) (ChatMessage, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == SenderAI {
			return msgs[i], true
		}
	}
	return ChatMessage{}, false
}
