package chatroomhandler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"lesson-server/services/chat-api/internal/config"
	"lesson-server/services/chat-api/internal/domain"
	domainchatroom "lesson-server/services/chat-api/internal/domain/chatroom"
	"lesson-server/services/chat-api/internal/domain/reveal"
	"lesson-server/services/chat-api/internal/infrastructure/metrics"
	requests "lesson-server/services/chat-api/internal/interfaces/httpserver/requests/chatroom"
	responses "lesson-server/services/chat-api/internal/interfaces/httpserver/responses/chatroom"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

// Handler implements the chat room API operations on top of the facade.
type Handler struct {
	cfg     *config.Config
	service *domainchatroom.Service
	reveals *reveal.Manager
	log     zerolog.Logger
}

// NewHandler wires the handler.
func NewHandler(cfg *config.Config, service *domainchatroom.Service, reveals *reveal.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		service: service,
		reveals: reveals,
		log:     log.With().Str("component", "chatroom-handler").Logger(),
	}
}

func backendLabel(p domain.Principal) string {
	if p.Demo {
		return "demo"
	}
	return "live"
}

func errorTypeLabel(err error) string {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return string(platformErr.GetErrorType())
	}
	return string(platformerrors.ErrorTypeInternal)
}

// CreateRoom opens a room and runs the opening exchange. A provider failure
// after the room exists still returns the room, with exchange_error set.
func (h *Handler) CreateRoom(ctx context.Context, p domain.Principal, req requests.CreateRoomRequest) (*responses.CreateRoomResponse, error) {
	start := time.Now()
	outcome, err := h.service.CreateConversation(ctx, p, domainchatroom.CreateConversationInput{
		Title:          req.Title,
		Topic:          req.Topic,
		ModelType:      req.ModelType,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return nil, err
	}

	backend := backendLabel(p)
	metrics.RecordRoomCreated(backend)
	metrics.RecordMessageAppended(string(domainchatroom.SenderUser), backend)
	metrics.RecordExchangeDuration(backend, time.Since(start).Seconds())

	resp := &responses.CreateRoomResponse{RoomResponse: responses.NewRoomResponse(outcome.Room)}
	if outcome.Reply != nil {
		reply := responses.NewMessageResponse(*outcome.Reply)
		resp.Reply = &reply
		metrics.RecordMessageAppended(string(domainchatroom.SenderAI), backend)
	}
	if outcome.ExchangeErr != nil {
		metrics.RecordProviderError(backend, errorTypeLabel(outcome.ExchangeErr))
		resp.ExchangeError = outcome.ExchangeErr.Error()
	}
	return resp, nil
}

// SendMessage appends the user message and returns the AI reply.
func (h *Handler) SendMessage(ctx context.Context, p domain.Principal, roomID string, req requests.SendMessageRequest) (*responses.MessageResponse, error) {
	backend := backendLabel(p)
	start := time.Now()
	reply, err := h.service.SendMessage(ctx, p, roomID, req.Content)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
			metrics.RecordProviderError(backend, errorTypeLabel(err))
		}
		return nil, err
	}
	metrics.RecordMessageAppended(string(domainchatroom.SenderUser), backend)
	metrics.RecordMessageAppended(string(domainchatroom.SenderAI), backend)
	metrics.RecordExchangeDuration(backend, time.Since(start).Seconds())

	resp := responses.NewMessageResponse(*reply)
	return &resp, nil
}

// GetRoom returns one room.
func (h *Handler) GetRoom(ctx context.Context, p domain.Principal, roomID string) (*responses.RoomResponse, error) {
	room, err := h.service.GetRoom(ctx, p, roomID)
	if err != nil {
		return nil, err
	}
	resp := responses.NewRoomResponse(room)
	return &resp, nil
}

// ListRooms returns the caller's active rooms, most recently updated first.
func (h *Handler) ListRooms(ctx context.Context, p domain.Principal) (*responses.RoomListResponse, error) {
	rooms, err := h.service.ListActiveRooms(ctx, p)
	if err != nil {
		return nil, err
	}
	resp := responses.NewRoomListResponse(rooms)
	return &resp, nil
}

// ListDeletedRooms returns soft-deleted rooms, most recently deleted first.
func (h *Handler) ListDeletedRooms(ctx context.Context, p domain.Principal) (*responses.RoomListResponse, error) {
	rooms, err := h.service.ListDeletedRooms(ctx, p)
	if err != nil {
		return nil, err
	}
	resp := responses.NewRoomListResponse(rooms)
	return &resp, nil
}

// UpdateRoom applies a partial metadata update.
func (h *Handler) UpdateRoom(ctx context.Context, p domain.Principal, roomID string, req requests.UpdateRoomRequest) (*responses.RoomResponse, error) {
	room, err := h.service.UpdateRoom(ctx, p, roomID, domainchatroom.MetadataPatch{
		Title:     req.Title,
		Topic:     req.Topic,
		ModelType: req.ModelType,
	})
	if err != nil {
		return nil, err
	}
	resp := responses.NewRoomResponse(room)
	return &resp, nil
}

// DeleteRoom soft deletes a room.
func (h *Handler) DeleteRoom(ctx context.Context, p domain.Principal, roomID string) (*responses.DeletedResponse, error) {
	if err := h.service.DeleteRoom(ctx, p, roomID); err != nil {
		return nil, err
	}
	h.reveals.Release(roomID)
	resp := responses.NewDeletedResponse(roomID)
	return &resp, nil
}

// RestoreRoom clears the soft-delete flag.
func (h *Handler) RestoreRoom(ctx context.Context, p domain.Principal, roomID string) (*responses.RoomResponse, error) {
	if err := h.service.RestoreRoom(ctx, p, roomID); err != nil {
		return nil, err
	}
	return h.GetRoom(ctx, p, roomID)
}

// ReplaceMessages swaps the room's message window.
func (h *Handler) ReplaceMessages(ctx context.Context, p domain.Principal, roomID string, req requests.ReplaceMessagesRequest) (*responses.RoomResponse, error) {
	msgs := make([]domainchatroom.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg := domainchatroom.ChatMessage{
			ID:        m.ID,
			Content:   m.Content,
			Sender:    domainchatroom.Sender(m.Sender),
			Timestamp: m.Timestamp,
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		msgs = append(msgs, msg)
	}
	room, err := h.service.ReplaceMessages(ctx, p, roomID, msgs, req.ConversationID, req.ModelType)
	if err != nil {
		return nil, err
	}
	resp := responses.NewRoomResponse(room)
	return &resp, nil
}

// GetReveal drives the reveal engine for the room's latest assistant message
// and returns the current view snapshot.
func (h *Handler) GetReveal(ctx context.Context, p domain.Principal, roomID string) (*responses.RevealResponse, error) {
	room, err := h.service.GetRoom(ctx, p, roomID)
	if err != nil {
		return nil, err
	}
	eng := h.reveals.Engine(roomID)
	if latest, ok := domainchatroom.LatestAssistantMessage(room.Messages); ok {
		eng.Present(ctx, latest)
	}
	return &responses.RevealResponse{RoomID: roomID, View: eng.View()}, nil
}

// CancelReveal stops any reveal in progress without marking it seen.
func (h *Handler) CancelReveal(_ context.Context, _ domain.Principal, roomID string) {
	h.reveals.Release(roomID)
}
