package chatroom

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lesson-server/services/chat-api/internal/interfaces/httpserver/handlers/chatroomhandler"
	"lesson-server/services/chat-api/internal/interfaces/httpserver/middlewares"
	requests "lesson-server/services/chat-api/internal/interfaces/httpserver/requests/chatroom"
	"lesson-server/services/chat-api/internal/interfaces/httpserver/responses"
	"lesson-server/services/chat-api/internal/utils/idgen"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

// ChatRoomRoute registers the chat room endpoints.
type ChatRoomRoute struct {
	handler *chatroomhandler.Handler
}

// NewChatRoomRoute builds the route group.
func NewChatRoomRoute(handler *chatroomhandler.Handler) *ChatRoomRoute {
	return &ChatRoomRoute{handler: handler}
}

// Register mounts the room endpoints under the given group.
func (r *ChatRoomRoute) Register(group *gin.RouterGroup) {
	rooms := group.Group("/rooms")
	rooms.POST("", r.createRoom)
	rooms.GET("", r.listRooms)
	rooms.GET("/deleted", r.listDeletedRooms)
	rooms.GET("/:room_id", r.getRoom)
	rooms.PATCH("/:room_id", r.updateRoom)
	rooms.DELETE("/:room_id", r.deleteRoom)
	rooms.POST("/:room_id/restore", r.restoreRoom)
	rooms.POST("/:room_id/messages", r.sendMessage)
	rooms.PUT("/:room_id/messages", r.replaceMessages)
	rooms.GET("/:room_id/reveal", r.getReveal)
	rooms.DELETE("/:room_id/reveal", r.cancelReveal)
}

func (r *ChatRoomRoute) roomID(reqCtx *gin.Context) (string, bool) {
	roomID := reqCtx.Param("room_id")
	if !idgen.ValidateIDFormat(roomID, "room") {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid room id", "35d7f0a2-91c8-4e64-b5a0-7c2d8f1e6093")
		return "", false
	}
	return roomID, true
}

// createRoom godoc
//
//	@Summary		Create a chat room
//	@Description	Creates a room seeded with the first user message and runs the opening AI exchange
//	@Tags			rooms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		requests.CreateRoomRequest	true	"room payload"
//	@Success		201		{object}	chatroom.CreateRoomResponse
//	@Failure		429		{object}	responses.ErrorResponse
//	@Router			/v1/rooms [post]
func (r *ChatRoomRoute) createRoom(reqCtx *gin.Context) {
	p, ok := middlewares.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized,
			"caller identity is required", "6a90e3d8-24c7-4f15-8b6e-d03f5a7c2918")
		return
	}
	var req requests.CreateRoomRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid request body", "e84b2f60-d159-4c37-a28d-90f6c5e1b743")
		return
	}
	resp, err := r.handler.CreateRoom(reqCtx.Request.Context(), p, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to create room")
		return
	}
	reqCtx.JSON(http.StatusCreated, resp)
}

// listRooms godoc
//
//	@Summary	List active rooms
//	@Tags		rooms
//	@Produce	json
//	@Success	200	{object}	chatroom.RoomListResponse
//	@Router		/v1/rooms [get]
func (r *ChatRoomRoute) listRooms(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	resp, err := r.handler.ListRooms(reqCtx.Request.Context(), p)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list rooms")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// listDeletedRooms godoc
//
//	@Summary	List soft-deleted rooms
//	@Tags		rooms
//	@Produce	json
//	@Success	200	{object}	chatroom.RoomListResponse
//	@Router		/v1/rooms/deleted [get]
func (r *ChatRoomRoute) listDeletedRooms(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	resp, err := r.handler.ListDeletedRooms(reqCtx.Request.Context(), p)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list deleted rooms")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// getRoom godoc
//
//	@Summary	Get a room
//	@Tags		rooms
//	@Produce	json
//	@Param		room_id	path		string	true	"room id"
//	@Success	200		{object}	chatroom.RoomResponse
//	@Failure	404		{object}	responses.ErrorResponse
//	@Router		/v1/rooms/{room_id} [get]
func (r *ChatRoomRoute) getRoom(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	resp, err := r.handler.GetRoom(reqCtx.Request.Context(), p, roomID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to load room")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// updateRoom godoc
//
//	@Summary	Update room metadata
//	@Tags		rooms
//	@Accept		json
//	@Produce	json
//	@Param		room_id	path		string						true	"room id"
//	@Param		request	body		requests.UpdateRoomRequest	true	"metadata patch"
//	@Success	200		{object}	chatroom.RoomResponse
//	@Router		/v1/rooms/{room_id} [patch]
func (r *ChatRoomRoute) updateRoom(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	var req requests.UpdateRoomRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid request body", "1c5f8d30-7a92-4be6-805c-f4e2d9a61b87")
		return
	}
	resp, err := r.handler.UpdateRoom(reqCtx.Request.Context(), p, roomID, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to update room")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// deleteRoom godoc
//
//	@Summary	Soft delete a room
//	@Tags		rooms
//	@Produce	json
//	@Param		room_id	path		string	true	"room id"
//	@Success	200		{object}	chatroom.DeletedResponse
//	@Router		/v1/rooms/{room_id} [delete]
func (r *ChatRoomRoute) deleteRoom(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	resp, err := r.handler.DeleteRoom(reqCtx.Request.Context(), p, roomID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to delete room")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// restoreRoom godoc
//
//	@Summary	Restore a soft-deleted room
//	@Tags		rooms
//	@Produce	json
//	@Param		room_id	path		string	true	"room id"
//	@Success	200		{object}	chatroom.RoomResponse
//	@Router		/v1/rooms/{room_id}/restore [post]
func (r *ChatRoomRoute) restoreRoom(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	resp, err := r.handler.RestoreRoom(reqCtx.Request.Context(), p, roomID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to restore room")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// sendMessage godoc
//
//	@Summary		Send a message
//	@Description	Appends the user message and returns the AI reply
//	@Tags			rooms
//	@Accept			json
//	@Produce		json
//	@Param			room_id	path		string						true	"room id"
//	@Param			request	body		requests.SendMessageRequest	true	"message payload"
//	@Success		201		{object}	chatroom.MessageResponse
//	@Failure		502		{object}	responses.ErrorResponse
//	@Router			/v1/rooms/{room_id}/messages [post]
func (r *ChatRoomRoute) sendMessage(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	var req requests.SendMessageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid request body", "b90d6c24-3f81-4e57-a2d0-58c7f1e63a92")
		return
	}
	resp, err := r.handler.SendMessage(reqCtx.Request.Context(), p, roomID, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to send message")
		return
	}
	reqCtx.JSON(http.StatusCreated, resp)
}

// replaceMessages godoc
//
//	@Summary	Replace the room's message window
//	@Tags		rooms
//	@Accept		json
//	@Produce	json
//	@Param		room_id	path		string							true	"room id"
//	@Param		request	body		requests.ReplaceMessagesRequest	true	"window payload"
//	@Success	200		{object}	chatroom.RoomResponse
//	@Router		/v1/rooms/{room_id}/messages [put]
func (r *ChatRoomRoute) replaceMessages(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	var req requests.ReplaceMessagesRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid request body", "74a1e8f5-0c36-4d29-b7e8-d52c09f41a60")
		return
	}
	resp, err := r.handler.ReplaceMessages(reqCtx.Request.Context(), p, roomID, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to replace messages")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// getReveal godoc
//
//	@Summary	Reveal view for the latest assistant message
//	@Tags		rooms
//	@Produce	json
//	@Param		room_id	path		string	true	"room id"
//	@Success	200		{object}	chatroom.RevealResponse
//	@Router		/v1/rooms/{room_id}/reveal [get]
func (r *ChatRoomRoute) getReveal(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	resp, err := r.handler.GetReveal(reqCtx.Request.Context(), p, roomID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to load reveal view")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// cancelReveal godoc
//
//	@Summary	Cancel a reveal in progress
//	@Tags		rooms
//	@Param		room_id	path	string	true	"room id"
//	@Success	204
//	@Router		/v1/rooms/{room_id}/reveal [delete]
func (r *ChatRoomRoute) cancelReveal(reqCtx *gin.Context) {
	p, _ := middlewares.PrincipalFromContext(reqCtx)
	roomID, ok := r.roomID(reqCtx)
	if !ok {
		return
	}
	r.handler.CancelReveal(reqCtx.Request.Context(), p, roomID)
	reqCtx.Status(http.StatusNoContent)
}
