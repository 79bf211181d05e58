package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"lesson-server/services/chat-api/internal/domain/chatroom"
)

// JSONMessages stores the inline message window as a jsonb column.
type JSONMessages []chatroom.ChatMessage

// Value implements driver.Valuer.
func (m JSONMessages) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *JSONMessages) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMessages: %T", value)
	}
	return json.Unmarshal(data, m)
}

// ChatRoom is the persisted chat room row. The message window lives inline
// with the room, mirroring the document model the clients expect.
type ChatRoom struct {
	ID             string       `gorm:"type:varchar(40);primaryKey"`
	OwnerID        string       `gorm:"type:varchar(64);not null;index:idx_chat_rooms_owner"`
	Title          string       `gorm:"type:varchar(255);not null"`
	Topic          string       `gorm:"type:varchar(255)"`
	ModelType      string       `gorm:"type:varchar(128)"`
	ConversationID string       `gorm:"type:varchar(128)"`
	InitialMessage string       `gorm:"type:text"`
	Messages       JSONMessages `gorm:"type:jsonb"`
	CreatedAt      time.Time    `gorm:"autoCreateTime"`
	UpdatedAt      time.Time    `gorm:"index"`
	IsDeleted      bool         `gorm:"not null;default:false;index"`
	DeletedAt      *time.Time
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// EtoD converts the schema row to the domain entity.
func (s *ChatRoom) EtoD() *chatroom.ChatRoom {
	return &chatroom.ChatRoom{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		Title:          s.Title,
		Topic:          s.Topic,
		ModelType:      s.ModelType,
		ConversationID: s.ConversationID,
		InitialMessage: s.InitialMessage,
		Messages:       append([]chatroom.ChatMessage(nil), s.Messages...),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		IsDeleted:      s.IsDeleted,
		DeletedAt:      s.DeletedAt,
	}
}

// NewSchemaChatRoom converts the domain entity to a schema row.
func NewSchemaChatRoom(room *chatroom.ChatRoom) *ChatRoom {
	return &ChatRoom{
		ID:             room.ID,
		OwnerID:        room.OwnerID,
		Title:          room.Title,
		Topic:          room.Topic,
		ModelType:      room.ModelType,
		ConversationID: room.ConversationID,
		InitialMessage: room.InitialMessage,
		Messages:       JSONMessages(room.Messages),
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
		IsDeleted:      room.IsDeleted,
		DeletedAt:      room.DeletedAt,
	}
}
