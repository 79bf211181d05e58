package v1

import (
	"github.com/gin-gonic/gin"

	"lesson-server/services/chat-api/internal/interfaces/httpserver/handlers/chatroomhandler"
	chatroomroute "lesson-server/services/chat-api/internal/interfaces/httpserver/routes/v1/chatroom"
)

// Routes aggregates the v1 route groups.
type Routes struct {
	chatRooms *chatroomroute.ChatRoomRoute
}

// NewRoutes builds the v1 route set.
func NewRoutes(chatRoomHandler *chatroomhandler.Handler) *Routes {
	return &Routes{
		chatRooms: chatroomroute.NewChatRoomRoute(chatRoomHandler),
	}
}

// Register mounts all v1 routes under the given group.
func (r *Routes) Register(group *gin.RouterGroup) {
	v1 := group.Group("/v1")
	r.chatRooms.Register(v1)
}
