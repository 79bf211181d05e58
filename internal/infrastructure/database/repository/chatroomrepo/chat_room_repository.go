package chatroomrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"lesson-server/services/chat-api/internal/domain/chatroom"
	"lesson-server/services/chat-api/internal/infrastructure/database/dbschema"
	"lesson-server/services/chat-api/internal/utils/functional"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

// Repository is the postgres-backed chat room gateway. Rooms are plain rows
// with the message window inline; every mutation is a read-modify-write with
// last-write-wins semantics.
type Repository struct {
	db *gorm.DB
}

var _ chatroom.Gateway = (*Repository)(nil)

// NewRepository builds a gateway over the given gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountActiveRooms(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbschema.ChatRoom{}).
		Where("owner_id = ? AND is_deleted = ?", ownerID, false).
		Count(&count).Error
	if err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to count active rooms", err,
			"e2c75a18-4b9d-40f6-83a2-1d6e0b97c453")
	}
	return count, nil
}

func (r *Repository) CreateRoom(ctx context.Context, room *chatroom.ChatRoom) error {
	count, err := r.CountActiveRooms(ctx, room.OwnerID)
	if err != nil {
		return err
	}
	if count >= chatroom.MaxActiveRooms {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeQuotaExceeded, "active room quota reached", nil,
			"f27c1d95-3e60-4b8a-92f4-d05a8c63e17b")
	}
	if err := r.db.WithContext(ctx).Create(dbschema.NewSchemaChatRoom(room)).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create room", err,
			"58a3d0f7-c2b1-4e69-9d84-b70f6c25e193")
	}
	return nil
}

func (r *Repository) GetRoom(ctx context.Context, ownerID, roomID string) (*chatroom.ChatRoom, error) {
	entity, err := r.getEntity(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (r *Repository) getEntity(ctx context.Context, ownerID, roomID string) (*dbschema.ChatRoom, error) {
	var entity dbschema.ChatRoom
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", roomID, ownerID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "room not found", err,
				"c07b4e92-6f58-41da-a3c1-95e8d2b70f64")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to load room", err,
			"1f83a6d0-9e27-45cb-b581-04c7d9e3a852")
	}
	return &entity, nil
}

func (r *Repository) ListActiveRooms(ctx context.Context, ownerID string) ([]*chatroom.ChatRoom, error) {
	return r.listRooms(ctx, ownerID, false, "updated_at DESC")
}

func (r *Repository) ListDeletedRooms(ctx context.Context, ownerID string) ([]*chatroom.ChatRoom, error) {
	return r.listRooms(ctx, ownerID, true, "deleted_at DESC")
}

func (r *Repository) listRooms(ctx context.Context, ownerID string, deleted bool, order string) ([]*chatroom.ChatRoom, error) {
	var entities []dbschema.ChatRoom
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, deleted).
		Order(order).
		Find(&entities).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list rooms", err,
			"7a2c9f64-0d15-4b8e-a397-62e5d1c80b49")
	}
	return functional.Map(entities, func(e dbschema.ChatRoom) *chatroom.ChatRoom {
		return e.EtoD()
	}), nil
}

func (r *Repository) AppendMessages(ctx context.Context, ownerID, roomID string, msgs []chatroom.ChatMessage, conversationID string) (*chatroom.ChatRoom, error) {
	entity, err := r.getEntity(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}

	window := chatroom.TrimWindow(append([]chatroom.ChatMessage(entity.Messages), msgs...))
	updates := map[string]any{
		"messages":   dbschema.JSONMessages(window),
		"updated_at": time.Now().UTC(),
	}
	if conversationID != "" {
		updates["conversation_id"] = conversationID
	}
	if err := r.applyUpdates(ctx, ownerID, roomID, updates); err != nil {
		return nil, err
	}
	return r.GetRoom(ctx, ownerID, roomID)
}

func (r *Repository) ReplaceMessages(ctx context.Context, ownerID, roomID string, msgs []chatroom.ChatMessage, conversationID, modelType string) (*chatroom.ChatRoom, error) {
	if _, err := r.getEntity(ctx, ownerID, roomID); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"messages":   dbschema.JSONMessages(chatroom.TrimWindow(msgs)),
		"updated_at": time.Now().UTC(),
	}
	if conversationID != "" {
		updates["conversation_id"] = conversationID
	}
	if modelType != "" {
		updates["model_type"] = modelType
	}
	if err := r.applyUpdates(ctx, ownerID, roomID, updates); err != nil {
		return nil, err
	}
	return r.GetRoom(ctx, ownerID, roomID)
}

func (r *Repository) SoftDelete(ctx context.Context, ownerID, roomID string) error {
	now := time.Now().UTC()
	return r.mutateExisting(ctx, ownerID, roomID, map[string]any{
		"is_deleted": true,
		"deleted_at": &now,
	})
}

func (r *Repository) Restore(ctx context.Context, ownerID, roomID string) error {
	return r.mutateExisting(ctx, ownerID, roomID, map[string]any{
		"is_deleted": false,
		"deleted_at": nil,
	})
}

func (r *Repository) UpdateMetadata(ctx context.Context, ownerID, roomID string, patch chatroom.MetadataPatch) (*chatroom.ChatRoom, error) {
	if _, err := r.getEntity(ctx, ownerID, roomID); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Topic != nil {
		updates["topic"] = *patch.Topic
	}
	if patch.ModelType != nil {
		updates["model_type"] = *patch.ModelType
	}
	if err := r.applyUpdates(ctx, ownerID, roomID, updates); err != nil {
		return nil, err
	}
	return r.GetRoom(ctx, ownerID, roomID)
}

// mutateExisting applies updates and reports NotFound when no row matched.
func (r *Repository) mutateExisting(ctx context.Context, ownerID, roomID string, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&dbschema.ChatRoom{}).
		Where("id = ? AND owner_id = ?", roomID, ownerID).
		Updates(updates)
	if res.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to update room", res.Error,
			"b65e0a93-27d4-4f1c-8e50-a9c3d7f64128")
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "room not found", nil,
			"d89f3c51-4a07-4e2b-b6d9-50e1c8a72f36")
	}
	return nil
}

func (r *Repository) applyUpdates(ctx context.Context, ownerID, roomID string, updates map[string]any) error {
	err := r.db.WithContext(ctx).
		Model(&dbschema.ChatRoom{}).
		Where("id = ? AND owner_id = ?", roomID, ownerID).
		Updates(updates).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to update room", err,
			"0c4a8e67-93d2-4b5f-a081-6e7f2d19c534")
	}
	return nil
}
