package reveal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lesson-server/services/chat-api/internal/domain/chatroom"
)

func testEngine(seen SeenStore) *Engine {
	return NewEngine(Config{CharInterval: time.Millisecond, MinRevealLength: 5}, seen, zerolog.Nop())
}

// slowEngine ticks slowly enough that tests can observe the revealing state
// before the first character lands.
func slowEngine(seen SeenStore) *Engine {
	return NewEngine(Config{CharInterval: time.Second, MinRevealLength: 5}, seen, zerolog.Nop())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestEngineRevealsUnseenMessage(t *testing.T) {
	ctx := context.Background()
	seen := NewMemorySeenStore()
	eng := testEngine(seen)

	msg := chatroom.ChatMessage{ID: "msg_a", Content: "keep your embouchure relaxed", Sender: chatroom.SenderAI}
	eng.Present(ctx, msg)

	waitFor(t, func() bool { return eng.View().State == StateRevealed.String() })

	view := eng.View()
	if view.Text != msg.Content {
		t.Errorf("revealed text = %q, want full content", view.Text)
	}
	if view.Streaming {
		t.Error("View() still streaming after completion")
	}
	if ok, _ := seen.Contains(ctx, msg.ID); !ok {
		t.Error("completed reveal was not recorded in the seen-set")
	}
}

func TestEngineShortcuts(t *testing.T) {
	ctx := context.Background()

	t.Run("short content skips the animation", func(t *testing.T) {
		seen := NewMemorySeenStore()
		eng := testEngine(seen)

		eng.Present(ctx, chatroom.ChatMessage{ID: "msg_b", Content: "ok!", Sender: chatroom.SenderAI})

		view := eng.View()
		if view.State != StateRevealed.String() || view.Text != "ok!" {
			t.Errorf("View() = %+v, want revealed with full text", view)
		}
		if ok, _ := seen.Contains(ctx, "msg_b"); ok {
			t.Error("shortcut reveal should not touch the seen-set")
		}
	})

	t.Run("missing id skips the animation", func(t *testing.T) {
		eng := testEngine(NewMemorySeenStore())
		eng.Present(ctx, chatroom.ChatMessage{Content: "a longer answer without an id"})
		if view := eng.View(); view.State != StateRevealed.String() {
			t.Errorf("View() = %+v, want revealed", view)
		}
	})

	t.Run("already seen message shows in full", func(t *testing.T) {
		seen := NewMemorySeenStore()
		if err := seen.Add(ctx, "msg_c"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		eng := testEngine(seen)

		eng.Present(ctx, chatroom.ChatMessage{ID: "msg_c", Content: "already revealed once", Sender: chatroom.SenderAI})

		view := eng.View()
		if view.State != StateRevealed.String() || view.Text != "already revealed once" {
			t.Errorf("View() = %+v, want revealed with full text", view)
		}
	})
}

type failingSeenStore struct{}

func (failingSeenStore) Contains(context.Context, string) (bool, error) {
	return false, errors.New("store unavailable")
}
func (failingSeenStore) Add(context.Context, string) error { return nil }

func TestEngineStreamsWhenSeenLookupFails(t *testing.T) {
	eng := slowEngine(failingSeenStore{})
	eng.Present(context.Background(), chatroom.ChatMessage{ID: "msg_d", Content: "stream me regardless"})
	if view := eng.View(); view.State != StateRevealing.String() {
		t.Errorf("View() = %+v, want revealing despite lookup failure", view)
	}
	eng.Cancel()
}

func TestEngineCancelDoesNotMarkSeen(t *testing.T) {
	ctx := context.Background()
	seen := NewMemorySeenStore()
	eng := slowEngine(seen)

	eng.Present(ctx, chatroom.ChatMessage{ID: "msg_e", Content: "a message long enough to stream"})
	eng.Cancel()

	if view := eng.View(); view.State != StateIdle.String() {
		t.Errorf("View() after Cancel = %+v, want idle", view)
	}
	if ok, _ := seen.Contains(ctx, "msg_e"); ok {
		t.Error("cancelled reveal must not be recorded as seen")
	}

	// The same message streams again on the next presentation.
	eng.Present(ctx, chatroom.ChatMessage{ID: "msg_e", Content: "a message long enough to stream"})
	if view := eng.View(); view.State != StateRevealing.String() {
		t.Errorf("View() after re-present = %+v, want revealing", view)
	}
	eng.Cancel()
}

func TestEnginePresentIsIdempotentForSameMessage(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(NewMemorySeenStore())

	eng.Present(ctx, chatroom.ChatMessage{ID: "msg_f", Content: "first answer, long enough"})
	waitFor(t, func() bool { return len(eng.View().Text) > 0 })

	before := eng.View()
	eng.Present(ctx, chatroom.ChatMessage{ID: "msg_f", Content: "first answer, long enough"})
	after := eng.View()
	if len(after.Text) < len(before.Text) {
		t.Errorf("re-presenting the in-flight message rewound the reveal: %q -> %q", before.Text, after.Text)
	}
	eng.Cancel()
}

func TestEngineNewMessageRestartsCycle(t *testing.T) {
	ctx := context.Background()
	eng := slowEngine(NewMemorySeenStore())

	eng.Present(ctx, chatroom.ChatMessage{ID: "msg_g", Content: "the first long answer"})
	eng.Present(ctx, chatroom.ChatMessage{ID: "msg_h", Content: "a different long answer"})

	view := eng.View()
	if view.MessageID != "msg_h" {
		t.Errorf("View() message id = %q, want the newer message", view.MessageID)
	}
	if view.State != StateRevealing.String() {
		t.Errorf("View() = %+v, want revealing restarted", view)
	}
	eng.Cancel()
}

func TestManagerTracksEnginesPerRoom(t *testing.T) {
	mgr := NewManager(Config{CharInterval: time.Millisecond}, NewMemorySeenStore(), zerolog.Nop())

	a := mgr.Engine("room_1")
	if mgr.Engine("room_1") != a {
		t.Error("Engine() returned a new engine for an existing room")
	}
	if mgr.Engine("room_2") == a {
		t.Error("Engine() shared an engine across rooms")
	}

	mgr.Release("room_1")
	if mgr.Engine("room_1") == a {
		t.Error("Release() did not drop the room engine")
	}
}
