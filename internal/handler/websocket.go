package handler

import (
	"net/http"

	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection GET /api/ws
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c)
}

// GetUserConnections GET /api/ws/status
func (h *WebSocketHandler) GetUserConnections(c *gin.Context) {
	count := h.hub.UserConnections(userID(c))
	respond(c, http.StatusOK, gin.H{
		"user_id":          userID(c),
		"connection_count": count,
		"is_connected":     count > 0,
	})
}
