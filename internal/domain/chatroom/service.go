package chatroom

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"lesson-server/services/chat-api/internal/domain"
	"lesson-server/services/chat-api/internal/domain/provider"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

// Service is the chat room facade. It owns the quota check, the message
// append flow and the provider exchange, selecting the live or demo backends
// from the caller's principal.
type Service struct {
	live     Gateway
	demo     Gateway
	liveExch provider.Exchanger
	demoExch provider.Exchanger
	log      zerolog.Logger
}

// NewService wires the facade with both backend pairs.
func NewService(live, demo Gateway, liveExch, demoExch provider.Exchanger, log zerolog.Logger) *Service {
	return &Service{
		live:     live,
		demo:     demo,
		liveExch: liveExch,
		demoExch: demoExch,
		log:      log.With().Str("component", "chatroom-service").Logger(),
	}
}

func (s *Service) backends(p domain.Principal) (Gateway, provider.Exchanger) {
	if p.Demo {
		return s.demo, s.demoExch
	}
	return s.live, s.liveExch
}

func (s *Service) requireOwner(ctx context.Context, p domain.Principal) error {
	if !p.Authenticated() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized, "caller identity is required", nil,
			"b3e8f1a6-2c94-4d07-a5b8-6f0d9e31c842")
	}
	return nil
}

// CreateConversationInput are the fields needed to open a new room.
type CreateConversationInput struct {
	Title          string
	Topic          string
	ModelType      string
	InitialMessage string
}

// ConversationOutcome is the result of CreateConversation. ExchangeErr is
// set when the room was persisted but the AI exchange (or the persistence of
// its reply) failed; the room is kept either way.
type ConversationOutcome struct {
	Room        *ChatRoom
	Reply       *ChatMessage
	ExchangeErr error
}

// CreateConversation creates a room seeded with the user's first message and
// runs the opening AI exchange. The quota check happens before any write. A
// provider failure after the room exists is partial success, not a rollback.
func (s *Service) CreateConversation(ctx context.Context, p domain.Principal, input CreateConversationInput) (*ConversationOutcome, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	gw, exch := s.backends(p)

	count, err := gw.CountActiveRooms(ctx, p.OwnerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count active rooms")
	}
	if count >= MaxActiveRooms {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeQuotaExceeded, "active room quota reached", nil,
			"7d94c2e5-0a8b-4f36-b1d7-c3e85a60f924")
	}

	seed, err := NewMessage(ctx, SenderUser, input.InitialMessage)
	if err != nil {
		return nil, err
	}
	room, err := NewChatRoom(ctx, p.OwnerID, input.Title, input.Topic, input.ModelType, seed)
	if err != nil {
		return nil, err
	}
	if err := gw.CreateRoom(ctx, room); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create room")
	}

	res, xerr := exch.Exchange(ctx, provider.ExchangeRequest{
		OwnerID:   p.OwnerID,
		Query:     input.InitialMessage,
		ModelType: input.ModelType,
	})
	if xerr != nil {
		s.log.Warn().Err(xerr).Str("room_id", room.ID).Msg("opening exchange failed, keeping room with seed message")
		return &ConversationOutcome{
			Room:        room,
			ExchangeErr: platformerrors.AsError(ctx, platformerrors.LayerDomain, xerr, "opening exchange failed"),
		}, nil
	}

	reply, err := NewMessage(ctx, SenderAI, res.Answer)
	if err != nil {
		return &ConversationOutcome{Room: room, ExchangeErr: err}, nil
	}
	updated, err := gw.AppendMessages(ctx, p.OwnerID, room.ID, []ChatMessage{reply}, res.ConversationID)
	if err != nil {
		s.log.Warn().Err(err).Str("room_id", room.ID).Msg("failed to persist opening reply")
		return &ConversationOutcome{
			Room:        room,
			ExchangeErr: platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist opening reply"),
		}, nil
	}
	return &ConversationOutcome{Room: updated, Reply: &reply}, nil
}

// SendMessage appends the user message, runs the exchange with the room's
// stored conversation id and model type, then appends the reply. The user
// append is kept when the exchange fails; the operation is not idempotent and
// callers may retry.
func (s *Service) SendMessage(ctx context.Context, p domain.Principal, roomID, content string) (*ChatMessage, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	gw, exch := s.backends(p)

	room, err := gw.GetRoom(ctx, p.OwnerID, roomID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load room")
	}

	userMsg, err := NewMessage(ctx, SenderUser, content)
	if err != nil {
		return nil, err
	}
	if _, err := gw.AppendMessages(ctx, p.OwnerID, roomID, []ChatMessage{userMsg}, ""); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist user message")
	}

	res, xerr := exch.Exchange(ctx, provider.ExchangeRequest{
		OwnerID:        p.OwnerID,
		Query:          content,
		ModelType:      room.ModelType,
		ConversationID: room.ConversationID,
	})
	if xerr != nil {
		s.log.Warn().Err(xerr).Str("room_id", roomID).Msg("exchange failed, user message kept")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, xerr, "exchange failed")
	}

	reply, err := NewMessage(ctx, SenderAI, res.Answer)
	if err != nil {
		return nil, err
	}
	if _, err := gw.AppendMessages(ctx, p.OwnerID, roomID, []ChatMessage{reply}, res.ConversationID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist reply")
	}
	return &reply, nil
}

// GetRoom returns one room; soft-deleted rooms are still addressable by id.
func (s *Service) GetRoom(ctx context.Context, p domain.Principal, roomID string) (*ChatRoom, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	gw, _ := s.backends(p)
	room, err := gw.GetRoom(ctx, p.OwnerID, roomID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load room")
	}
	return room, nil
}

// ListActiveRooms returns non-deleted rooms, most recently updated first.
func (s *Service) ListActiveRooms(ctx context.Context, p domain.Principal) ([]*ChatRoom, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	gw, _ := s.backends(p)
	rooms, err := gw.ListActiveRooms(ctx, p.OwnerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list rooms")
	}
	return rooms, nil
}

// ListDeletedRooms returns soft-deleted rooms, most recently deleted first.
func (s *Service) ListDeletedRooms(ctx context.Context, p domain.Principal) ([]*ChatRoom, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	gw, _ := s.backends(p)
	rooms, err := gw.ListDeletedRooms(ctx, p.OwnerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list deleted rooms")
	}
	return rooms, nil
}

// DeleteRoom soft deletes a room. Deleting an already deleted room is a no-op.
func (s *Service) DeleteRoom(ctx context.Context, p domain.Principal, roomID string) error {
	if err := s.requireOwner(ctx, p); err != nil {
		return err
	}
	gw, _ := s.backends(p)
	if err := gw.SoftDelete(ctx, p.OwnerID, roomID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete room")
	}
	return nil
}

// RestoreRoom clears the soft-delete flag. Restoring an active room is a no-op.
func (s *Service) RestoreRoom(ctx context.Context, p domain.Principal, roomID string) error {
	if err := s.requireOwner(ctx, p); err != nil {
		return err
	}
	gw, _ := s.backends(p)
	if err := gw.Restore(ctx, p.OwnerID, roomID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to restore room")
	}
	return nil
}

// UpdateRoom applies a partial metadata update.
func (s *Service) UpdateRoom(ctx context.Context, p domain.Principal, roomID string, patch MetadataPatch) (*ChatRoom, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "metadata patch has no fields", nil,
			"0e93b7a4-6d28-4f50-9c1b-a75e2d08f469")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "room title must not be empty", nil,
			"4a6e2d91-8b0f-4c57-93a1-e7d5f0c38b26")
	}
	gw, _ := s.backends(p)
	room, err := gw.UpdateMetadata(ctx, p.OwnerID, roomID, patch)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update room")
	}
	return room, nil
}

// ReplaceMessages swaps the room's whole message window.
func (s *Service) ReplaceMessages(ctx context.Context, p domain.Principal, roomID string, msgs []ChatMessage, conversationID, modelType string) (*ChatRoom, error) {
	if err := s.requireOwner(ctx, p); err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if !ValidSender(m.Sender) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation, "invalid message sender", nil,
				"91c4f7b2-5e03-4a68-bd29-7f8e1a60d5c3")
		}
	}
	gw, _ := s.backends(p)
	room, err := gw.ReplaceMessages(ctx, p.OwnerID, roomID, msgs, conversationID, modelType)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to replace messages")
	}
	return room, nil
}
