package chatroom

import (
	"context"
	"fmt"
	"testing"

	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

func TestNewMessageValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewMessage(ctx, Sender("bot"), "hi"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("NewMessage with unknown sender: got %v, want validation error", err)
	}
	if _, err := NewMessage(ctx, SenderUser, ""); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("NewMessage with empty content: got %v, want validation error", err)
	}

	msg, err := NewMessage(ctx, SenderUser, "hello")
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if msg.ID == "" {
		t.Error("NewMessage() produced empty id")
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewMessage() produced zero timestamp")
	}
}

func TestNewChatRoom(t *testing.T) {
	ctx := context.Background()
	seed, err := NewMessage(ctx, SenderUser, "first question")
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}

	room, err := NewChatRoom(ctx, "owner-1", "Tone practice", "tone", "artist-saxophone-ab01", seed)
	if err != nil {
		t.Fatalf("NewChatRoom() error = %v", err)
	}
	if len(room.Messages) != 1 || room.Messages[0].ID != seed.ID {
		t.Errorf("NewChatRoom() messages = %v, want seeded with %q", room.Messages, seed.ID)
	}
	if room.InitialMessage != seed.Content {
		t.Errorf("NewChatRoom() initial message = %q, want %q", room.InitialMessage, seed.Content)
	}
	if room.IsDeleted || room.DeletedAt != nil {
		t.Error("NewChatRoom() should not start deleted")
	}

	if _, err := NewChatRoom(ctx, "", "title", "", "", seed); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized) {
		t.Errorf("NewChatRoom without owner: got %v, want unauthorized error", err)
	}
	if _, err := NewChatRoom(ctx, "owner-1", "  ", "", "", seed); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("NewChatRoom with blank title: got %v, want validation error", err)
	}
}

func TestTrimWindow(t *testing.T) {
	ctx := context.Background()
	makeMessages := func(n int) []ChatMessage {
		msgs := make([]ChatMessage, 0, n)
		for i := 0; i < n; i++ {
			m, err := NewMessage(ctx, SenderUser, fmt.Sprintf("message %d", i))
			if err != nil {
				t.Fatalf("NewMessage() error = %v", err)
			}
			msgs = append(msgs, m)
		}
		return msgs
	}

	t.Run("under cap is untouched", func(t *testing.T) {
		msgs := makeMessages(MaxMessagesPerRoom)
		if got := TrimWindow(msgs); len(got) != MaxMessagesPerRoom {
			t.Errorf("TrimWindow() len = %d, want %d", len(got), MaxMessagesPerRoom)
		}
	})

	t.Run("evicts oldest first", func(t *testing.T) {
		msgs := makeMessages(MaxMessagesPerRoom + 5)
		got := TrimWindow(msgs)
		if len(got) != MaxMessagesPerRoom {
			t.Fatalf("TrimWindow() len = %d, want %d", len(got), MaxMessagesPerRoom)
		}
		if got[0].ID != msgs[5].ID {
			t.Errorf("TrimWindow() kept %q first, want %q", got[0].ID, msgs[5].ID)
		}
		if got[len(got)-1].ID != msgs[len(msgs)-1].ID {
			t.Error("TrimWindow() dropped the newest message")
		}
	})
}

func TestNearCapacity(t *testing.T) {
	room := &ChatRoom{}
	for i := 0; i < WarningMessageThreshold-1; i++ {
		room.Messages = append(room.Messages, ChatMessage{})
	}
	if room.NearCapacity() {
		t.Error("NearCapacity() = true below the threshold")
	}
	room.Messages = append(room.Messages, ChatMessage{})
	if !room.NearCapacity() {
		t.Error("NearCapacity() = false at the threshold")
	}
}

func TestLatestAssistantMessage(t *testing.T) {
	msgs := []ChatMessage{
		{ID: "m1", Sender: SenderUser},
		{ID: "m2", Sender: SenderAI},
		{ID: "m3", Sender: SenderUser},
		{ID: "m4", Sender: SenderAI},
		{ID: "m5", Sender: SenderUser},
	}
	got, ok := LatestAssistantMessage(msgs)
	if !ok || got.ID != "m4" {
		t.Errorf("LatestAssistantMessage() = %q, %v; want m4, true", got.ID, ok)
	}

	if _, ok := LatestAssistantMessage([]ChatMessage{{ID: "m1", Sender: SenderUser}}); ok {
		t.Error("LatestAssistantMessage() found a message in a window without AI messages")
	}
}
