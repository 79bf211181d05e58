package demostore

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"lesson-server/services/chat-api/internal/domain/chatroom"
	"lesson-server/services/chat-api/internal/infrastructure/localstore"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

const roomKeyPrefix = "room:"

// Gateway is the demo-mode chat room store. It mirrors the postgres gateway
// contract over the local pebble store, so quota, eviction, soft-delete and
// ordering behave identically without a network.
type Gateway struct {
	store *localstore.Store
	log   zerolog.Logger
}

var _ chatroom.Gateway = (*Gateway)(nil)

// NewGateway builds a demo gateway over the local store.
func NewGateway(store *localstore.Store, log zerolog.Logger) *Gateway {
	return &Gateway{
		store: store,
		log:   log.With().Str("component", "demo-store").Logger(),
	}
}

// roomRecord is the stored JSON form of a room.
type roomRecord struct {
	ID             string                 `json:"id"`
	OwnerID        string                 `json:"owner_id"`
	Title          string                 `json:"title"`
	Topic          string                 `json:"topic,omitempty"`
	ModelType      string                 `json:"model_type,omitempty"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	InitialMessage string                 `json:"initial_message,omitempty"`
	Messages       []chatroom.ChatMessage `json:"messages"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	IsDeleted      bool                   `json:"is_deleted"`
	DeletedAt      *time.Time             `json:"deleted_at,omitempty"`
}

func newRoomRecord(room *chatroom.ChatRoom) *roomRecord {
	return &roomRecord{
		ID:             room.ID,
		OwnerID:        room.OwnerID,
		Title:          room.Title,
		Topic:          room.Topic,
		ModelType:      room.ModelType,
		ConversationID: room.ConversationID,
		InitialMessage: room.InitialMessage,
		Messages:       append([]chatroom.ChatMessage(nil), room.Messages...),
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
		IsDeleted:      room.IsDeleted,
		DeletedAt:      room.DeletedAt,
	}
}

func (r *roomRecord) toDomain() *chatroom.ChatRoom {
	return &chatroom.ChatRoom{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Title:          r.Title,
		Topic:          r.Topic,
		ModelType:      r.ModelType,
		ConversationID: r.ConversationID,
		InitialMessage: r.InitialMessage,
		Messages:       append([]chatroom.ChatMessage(nil), r.Messages...),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		IsDeleted:      r.IsDeleted,
		DeletedAt:      r.DeletedAt,
	}
}

func roomKey(ownerID, roomID string) string {
	return roomKeyPrefix + ownerID + ":" + roomID
}

func (g *Gateway) CountActiveRooms(ctx context.Context, ownerID string) (int64, error) {
	rooms, err := g.loadAll(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, r := range rooms {
		if !r.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (g *Gateway) CreateRoom(ctx context.Context, room *chatroom.ChatRoom) error {
	count, err := g.CountActiveRooms(ctx, room.OwnerID)
	if err != nil {
		return err
	}
	if count >= chatroom.MaxActiveRooms {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeQuotaExceeded, "active room quota reached", nil,
			"5e18c7a3-0f42-4d96-b8e1-72a9d5c03f68")
	}
	return g.save(ctx, newRoomRecord(room))
}

func (g *Gateway) GetRoom(ctx context.Context, ownerID, roomID string) (*chatroom.ChatRoom, error) {
	rec, err := g.load(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (g *Gateway) ListActiveRooms(ctx context.Context, ownerID string) ([]*chatroom.ChatRoom, error) {
	rooms, err := g.loadAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []*chatroom.ChatRoom
	for _, r := range rooms {
		if !r.IsDeleted {
			out = append(out, r.toDomain())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (g *Gateway) ListDeletedRooms(ctx context.Context, ownerID string) ([]*chatroom.ChatRoom, error) {
	rooms, err := g.loadAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []*chatroom.ChatRoom
	for _, r := range rooms {
		if r.IsDeleted {
			out = append(out, r.toDomain())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := time.Time{}, time.Time{}
		if out[i].DeletedAt != nil {
			ti = *out[i].DeletedAt
		}
		if out[j].DeletedAt != nil {
			tj = *out[j].DeletedAt
		}
		return ti.After(tj)
	})
	return out, nil
}

func (g *Gateway) AppendMessages(ctx context.Context, ownerID, roomID string, msgs []chatroom.ChatMessage, conversationID string) (*chatroom.ChatRoom, error) {
	rec, err := g.load(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}
	rec.Messages = chatroom.TrimWindow(append(rec.Messages, msgs...))
	rec.UpdatedAt = time.Now().UTC()
	if conversationID != "" {
		rec.ConversationID = conversationID
	}
	if err := g.save(ctx, rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (g *Gateway) ReplaceMessages(ctx context.Context, ownerID, roomID string, msgs []chatroom.ChatMessage, conversationID, modelType string) (*chatroom.ChatRoom, error) {
	rec, err := g.load(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}
	rec.Messages = chatroom.TrimWindow(append([]chatroom.ChatMessage(nil), msgs...))
	rec.UpdatedAt = time.Now().UTC()
	if conversationID != "" {
		rec.ConversationID = conversationID
	}
	if modelType != "" {
		rec.ModelType = modelType
	}
	if err := g.save(ctx, rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (g *Gateway) SoftDelete(ctx context.Context, ownerID, roomID string) error {
	rec, err := g.load(ctx, ownerID, roomID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.IsDeleted = true
	rec.DeletedAt = &now
	return g.save(ctx, rec)
}

func (g *Gateway) Restore(ctx context.Context, ownerID, roomID string) error {
	rec, err := g.load(ctx, ownerID, roomID)
	if err != nil {
		return err
	}
	rec.IsDeleted = false
	rec.DeletedAt = nil
	return g.save(ctx, rec)
}

func (g *Gateway) UpdateMetadata(ctx context.Context, ownerID, roomID string, patch chatroom.MetadataPatch) (*chatroom.ChatRoom, error) {
	rec, err := g.load(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Topic != nil {
		rec.Topic = *patch.Topic
	}
	if patch.ModelType != nil {
		rec.ModelType = *patch.ModelType
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := g.save(ctx, rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (g *Gateway) load(ctx context.Context, ownerID, roomID string) (*roomRecord, error) {
	var rec roomRecord
	found, err := g.store.Get(roomKey(ownerID, roomID), &rec)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to load room", err,
			"9d06b5f2-c731-48ae-a4d8-e25c09f71b63")
	}
	if !found {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "room not found", nil,
			"3fa8d120-6e95-4c47-b30a-1d82c7e65f09")
	}
	return &rec, nil
}

func (g *Gateway) loadAll(ctx context.Context, ownerID string) ([]*roomRecord, error) {
	var out []*roomRecord
	err := g.store.ScanPrefix(roomKeyPrefix+ownerID+":", func(key string, value []byte) error {
		var rec roomRecord
		if err := decode(value, &rec); err != nil {
			g.log.Warn().Err(err).Str("key", key).Msg("skipping unreadable room record")
			return nil
		}
		out = append(out, &rec)
		return nil
	})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to scan rooms", err,
			"ba4f26e9-071d-4358-9c6b-f8d3a1e50724")
	}
	return out, nil
}

func (g *Gateway) save(ctx context.Context, rec *roomRecord) error {
	if err := g.store.Set(roomKey(rec.OwnerID, rec.ID), rec); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to save room", err,
			"07c3e8b1-94f5-4a26-8d07-6b1e2f9c45a8")
	}
	return nil
}
