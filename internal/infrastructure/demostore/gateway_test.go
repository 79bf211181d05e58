package demostore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"lesson-server/services/chat-api/internal/domain/chatroom"
	"lesson-server/services/chat-api/internal/infrastructure/localstore"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	store, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return NewGateway(store, zerolog.Nop())
}

func makeRoom(t *testing.T, ownerID, title string) *chatroom.ChatRoom {
	t.Helper()
	ctx := context.Background()
	seed, err := chatroom.NewMessage(ctx, chatroom.SenderUser, "opening question for "+title)
	require.NoError(t, err)
	room, err := chatroom.NewChatRoom(ctx, ownerID, title, "", "artist-saxophone-standard", seed)
	require.NoError(t, err)
	return room
}

func TestGatewayCreateAndGet(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	room := makeRoom(t, "owner-1", "Tone")

	require.NoError(t, gw.CreateRoom(ctx, room))

	got, err := gw.GetRoom(ctx, "owner-1", room.ID)
	require.NoError(t, err)
	require.Equal(t, room.ID, got.ID)
	require.Equal(t, room.Title, got.Title)
	require.Len(t, got.Messages, 1)

	_, err = gw.GetRoom(ctx, "owner-1", "room_missing")
	require.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	// Rooms are scoped per owner.
	_, err = gw.GetRoom(ctx, "owner-2", room.ID)
	require.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestGatewayQuota(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)

	var first *chatroom.ChatRoom
	for i := 0; i < chatroom.MaxActiveRooms; i++ {
		room := makeRoom(t, "owner-1", fmt.Sprintf("Room %d", i))
		require.NoError(t, gw.CreateRoom(ctx, room))
		if first == nil {
			first = room
		}
	}

	err := gw.CreateRoom(ctx, makeRoom(t, "owner-1", "One too many"))
	require.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeQuotaExceeded))

	// Another owner is unaffected.
	require.NoError(t, gw.CreateRoom(ctx, makeRoom(t, "owner-2", "First")))

	// Soft-deleted rooms do not count against the quota.
	require.NoError(t, gw.SoftDelete(ctx, "owner-1", first.ID))
	require.NoError(t, gw.CreateRoom(ctx, makeRoom(t, "owner-1", "Back under quota")))
}

func TestGatewayAppendMessages(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	room := makeRoom(t, "owner-1", "Tone")
	require.NoError(t, gw.CreateRoom(ctx, room))

	t.Run("evicts oldest past the window", func(t *testing.T) {
		batch := make([]chatroom.ChatMessage, 0, chatroom.MaxMessagesPerRoom+5)
		for i := 0; i < chatroom.MaxMessagesPerRoom+5; i++ {
			msg, err := chatroom.NewMessage(ctx, chatroom.SenderUser, fmt.Sprintf("message %d", i))
			require.NoError(t, err)
			batch = append(batch, msg)
		}

		got, err := gw.AppendMessages(ctx, "owner-1", room.ID, batch, "")
		require.NoError(t, err)
		require.Len(t, got.Messages, chatroom.MaxMessagesPerRoom)
		require.Equal(t, batch[len(batch)-1].ID, got.Messages[len(got.Messages)-1].ID)
	})

	t.Run("conversation id is set once and never cleared", func(t *testing.T) {
		msg, err := chatroom.NewMessage(ctx, chatroom.SenderAI, "an answer")
		require.NoError(t, err)

		got, err := gw.AppendMessages(ctx, "owner-1", room.ID, []chatroom.ChatMessage{msg}, "conv-1")
		require.NoError(t, err)
		require.Equal(t, "conv-1", got.ConversationID)

		msg2, err := chatroom.NewMessage(ctx, chatroom.SenderUser, "a follow-up")
		require.NoError(t, err)
		got, err = gw.AppendMessages(ctx, "owner-1", room.ID, []chatroom.ChatMessage{msg2}, "")
		require.NoError(t, err)
		require.Equal(t, "conv-1", got.ConversationID)
	})

	t.Run("missing room", func(t *testing.T) {
		_, err := gw.AppendMessages(ctx, "owner-1", "room_missing", nil, "")
		require.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	})
}

func TestGatewayReplaceMessages(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	room := makeRoom(t, "owner-1", "Tone")
	require.NoError(t, gw.CreateRoom(ctx, room))

	msg, err := chatroom.NewMessage(ctx, chatroom.SenderSystem, "conversation imported")
	require.NoError(t, err)

	got, err := gw.ReplaceMessages(ctx, "owner-1", room.ID, []chatroom.ChatMessage{msg}, "conv-9", "artist-trumpet-cd02")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	require.Equal(t, msg.ID, got.Messages[0].ID)
	require.Equal(t, "conv-9", got.ConversationID)
	require.Equal(t, "artist-trumpet-cd02", got.ModelType)
}

func TestGatewayListOrdering(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)

	rooms := make([]*chatroom.ChatRoom, 0, 3)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		room := makeRoom(t, "owner-1", fmt.Sprintf("Room %d", i))
		room.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		room.UpdatedAt = room.CreatedAt
		require.NoError(t, gw.CreateRoom(ctx, room))
		rooms = append(rooms, room)
	}

	t.Run("active rooms newest activity first", func(t *testing.T) {
		active, err := gw.ListActiveRooms(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, active, 3)
		require.Equal(t, rooms[2].ID, active[0].ID)
		require.Equal(t, rooms[0].ID, active[2].ID)

		// Appending bumps the room to the top.
		msg, err := chatroom.NewMessage(ctx, chatroom.SenderUser, "new activity")
		require.NoError(t, err)
		_, err = gw.AppendMessages(ctx, "owner-1", rooms[0].ID, []chatroom.ChatMessage{msg}, "")
		require.NoError(t, err)

		active, err = gw.ListActiveRooms(ctx, "owner-1")
		require.NoError(t, err)
		require.Equal(t, rooms[0].ID, active[0].ID)
	})

	t.Run("deleted rooms newest deletion first", func(t *testing.T) {
		require.NoError(t, gw.SoftDelete(ctx, "owner-1", rooms[1].ID))
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, gw.SoftDelete(ctx, "owner-1", rooms[2].ID))

		deleted, err := gw.ListDeletedRooms(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, deleted, 2)
		require.Equal(t, rooms[2].ID, deleted[0].ID)
		require.Equal(t, rooms[1].ID, deleted[1].ID)

		active, err := gw.ListActiveRooms(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, active, 1)
	})

	t.Run("restore moves the room back", func(t *testing.T) {
		require.NoError(t, gw.Restore(ctx, "owner-1", rooms[1].ID))

		got, err := gw.GetRoom(ctx, "owner-1", rooms[1].ID)
		require.NoError(t, err)
		require.False(t, got.IsDeleted)
		require.Nil(t, got.DeletedAt)

		deleted, err := gw.ListDeletedRooms(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, deleted, 1)
	})
}

func TestGatewayUpdateMetadata(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	room := makeRoom(t, "owner-1", "Tone")
	require.NoError(t, gw.CreateRoom(ctx, room))

	title := "Tone and breathing"
	topic := "breathing"
	got, err := gw.UpdateMetadata(ctx, "owner-1", room.ID, chatroom.MetadataPatch{Title: &title, Topic: &topic})
	require.NoError(t, err)
	require.Equal(t, title, got.Title)
	require.Equal(t, topic, got.Topic)
	require.Equal(t, room.ModelType, got.ModelType)
	require.True(t, got.UpdatedAt.After(room.UpdatedAt))
}

func TestGatewaySeed(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)

	require.NoError(t, gw.Seed(ctx, "demo-user"))

	rooms, err := gw.ListActiveRooms(ctx, "demo-user")
	require.NoError(t, err)
	require.NotEmpty(t, rooms)
	for _, room := range rooms {
		require.Equal(t, "demo-user", room.OwnerID)
		require.NotEmpty(t, room.Messages)
	}

	// Seeding again does not duplicate rooms.
	require.NoError(t, gw.Seed(ctx, "demo-user"))
	again, err := gw.ListActiveRooms(ctx, "demo-user")
	require.NoError(t, err)
	require.Len(t, again, len(rooms))
}
