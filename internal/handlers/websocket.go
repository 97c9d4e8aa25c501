package handlers

import (
	"net/http"

	"eventbeta/internal/chat"
	"eventbeta/internal/config"
	"eventbeta/internal/utils"
	ws "eventbeta/internal/websocket"
	"eventbeta/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades viewer connections into hub clients.
type WebSocketHandler struct {
	hub      *ws.Hub
	gate     chat.RoomGate
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the upgrade handler. Origin checking is left
// to the CORS allowlist applied upstream.
func NewWebSocketHandler(hub *ws.Hub, gate chat.RoomGate, cfg config.WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		gate: gate,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /ws/events/:event_id
func (h *WebSocketHandler) Connect(c *gin.Context) {
	eventID := c.Param("event_id")

	active, err := h.gate.RoomActive(c.Request.Context(), eventID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	if !active {
		utils.ForbiddenResponse(c, "Chat is not available for this event")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.hub, c.GetString("user_id"), eventID, h.cfg)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
