package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"diario/pkg/logger"
	"diario/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Stream is public and read-only, same as the comment thread
		return true
	},
}

// Handler exposes the live comment stream over HTTP
type Handler struct {
	hub *Hub
}

// NewHandler creates the websocket handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// StreamComments upgrades the connection and attaches it to the
// instante's comment room. GET /ws/instantes/:id/comments
func (h *Handler) StreamComments(c *gin.Context) {
	instanteID := c.Param("id")
	if instanteID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("instante id is required"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"instante_id": instanteID,
		"remote":      c.ClientIP(),
	}).Debug("comment stream client connected")

	h.hub.Subscribe(conn, instanteID)
}

// RoomStatus reports how many clients watch an instante.
// GET /ws/instantes/:id/status
func (h *Handler) RoomStatus(c *gin.Context) {
	instanteID := c.Param("id")
	c.JSON(http.StatusOK, models.SuccessResponse("room status", gin.H{
		"instante_id": instanteID,
		"clients":     h.hub.ClientCount(instanteID),
	}))
}
