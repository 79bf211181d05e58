package chatroom

import (
	"context"
	"strings"
	"time"

	"lesson-server/services/chat-api/internal/utils/idgen"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

const (
	// MaxMessagesPerRoom bounds the inline message window. Older messages
	// are evicted FIFO once the window is full.
	MaxMessagesPerRoom = 100

	// MaxActiveRooms is the per-owner quota of non-deleted rooms.
	MaxActiveRooms = 10

	// WarningMessageThreshold marks a room as nearing capacity.
	WarningMessageThreshold = 90

	RoomIDPrefix    = "room"
	MessageIDPrefix = "msg"
)

// ChatRoom is one conversation document. The message window is stored inline
// with the room.
type ChatRoom struct {
	ID             string
	OwnerID        string
	Title          string
	Topic          string
	ModelType      string
	ConversationID string
	InitialMessage string
	Messages       []ChatMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
	IsDeleted      bool
	DeletedAt      *time.Time
}

// NewChatRoom builds a room owned by ownerID, seeded with the initial user
// message.
func NewChatRoom(ctx context.Context, ownerID, title, topic, modelType string, seed ChatMessage) (*ChatRoom, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized, "room owner is required", nil,
			"8c1f5a29-3d7e-4b60-a2c8-f94e6b0d17a5")
	}
	if strings.TrimSpace(title) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "room title must not be empty", nil,
			"2e7b9d40-5f1c-48a3-b6e9-0d3a8c52f174")
	}
	id, err := idgen.GenerateSecureID(RoomIDPrefix, 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to generate room id", err,
			"a5d20c83-7e4b-49f1-8a6d-c1b3e90f52d7")
	}
	now := time.Now().UTC()
	return &ChatRoom{
		ID:             id,
		OwnerID:        ownerID,
		Title:          title,
		Topic:          topic,
		ModelType:      modelType,
		InitialMessage: seed.Content,
		Messages:       []ChatMessage{seed},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NearCapacity reports whether the window has reached the warning threshold.
func (r *ChatRoom) NearCapacity() bool {
	return len(r.Messages) >= WarningMessageThreshold
}

// TrimWindow drops the oldest messages so that at most MaxMessagesPerRoom
// remain. The input slice is not modified.
func TrimWindow(msgs []ChatMessage) []ChatMessage {
	if len(msgs) <= MaxMessagesPerRoom {
		return msgs
	}
	excess := len(msgs) - MaxMessagesPerRoom
	trimmed := make([]ChatMessage, MaxMessagesPerRoom)
	copy(trimmed, msgs[excess:])
	return trimmed
}

// MetadataPatch is a partial update of room metadata. Nil fields are left
// unchanged.
type MetadataPatch struct {
	Title     *string
	Topic     *string
	ModelType *string
}

// Empty reports whether the patch changes nothing.
func (p MetadataPatch) Empty() bool {
	return p.Title == nil && p.Topic == nil && p.ModelType == nil
}

// Gateway is the persistence boundary for chat rooms. Implementations are
// owner-scoped and follow last-write-wins semantics; no operation spans a
// transaction.
type Gateway interface {
	CountActiveRooms(ctx context.Context, ownerID string) (int64, error)
	CreateRoom(ctx context.Context, room *ChatRoom) error
	GetRoom(ctx context.Context, ownerID, roomID string) (*ChatRoom, error)
	ListActiveRooms(ctx context.Context, ownerID string) ([]*ChatRoom, error)
	ListDeletedRooms(ctx context.Context, ownerID string) ([]*ChatRoom, error)

	// AppendMessages appends to the window, trimming FIFO past the cap.
	// conversationID is persisted only when non-empty and never cleared.
	AppendMessages(ctx context.Context, ownerID, roomID string, msgs []ChatMessage, conversationID string) (*ChatRoom, error)

	// ReplaceMessages swaps the whole window. conversationID and modelType
	// are updated only when non-empty.
	ReplaceMessages(ctx context.Context, ownerID, roomID string, msgs []ChatMessage, conversationID, modelType string) (*ChatRoom, error)

	SoftDelete(ctx context.Context, ownerID, roomID string) error
	Restore(ctx context.Context, ownerID, roomID string) error
	UpdateMetadata(ctx context.Context, ownerID, roomID string, patch MetadataPatch) (*ChatRoom, error)
}
