package handlers

import (
	"errors"
	"net/http"

	"eventbeta/internal/call"
	"eventbeta/internal/config"
	"eventbeta/internal/utils"

	"github.com/gin-gonic/gin"
)

// CallHandler serves the call session endpoints.
type CallHandler struct {
	coordinator *call.Coordinator
	roomPrefix  string
}

// NewCallHandler creates a call handler.
func NewCallHandler(coordinator *call.Coordinator, cfg config.CallConfig) *CallHandler {
	return &CallHandler{coordinator: coordinator, roomPrefix: cfg.RoomPrefix}
}

// GetCall handles GET /events/:event_id/call
func (h *CallHandler) GetCall(c *gin.Context) {
	eventID := c.Param("event_id")

	state, err := h.coordinator.State(c.Request.Context(), eventID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	data := gin.H{"active": state.Active}
	if state.Active {
		data["session"] = state.Session
		data["room_name"] = call.RoomName(h.roomPrefix, eventID)
	}
	utils.SuccessResponse(c, data)
}

// StartCall handles POST /events/:event_id/call/start
func (h *CallHandler) StartCall(c *gin.Context) {
	eventID := c.Param("event_id")

	session, err := h.coordinator.Start(c.Request.Context(), eventID,
		c.GetString("user_id"), c.GetString("username"))
	if err != nil {
		h.writeCallError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"session":   session,
		"room_name": call.RoomName(h.roomPrefix, eventID),
	})
}

// JoinCall handles POST /events/:event_id/call/join
func (h *CallHandler) JoinCall(c *gin.Context) {
	eventID := c.Param("event_id")

	session, err := h.coordinator.Join(c.Request.Context(), eventID, c.GetString("user_id"))
	if err != nil {
		h.writeCallError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"session":   session,
		"room_name": call.RoomName(h.roomPrefix, eventID),
	})
}

// EndCall handles POST /events/:event_id/call/end
func (h *CallHandler) EndCall(c *gin.Context) {
	err := h.coordinator.End(c.Request.Context(), c.Param("event_id"), c.GetString("user_id"))
	if err != nil {
		h.writeCallError(c, err)
		return
	}

	utils.SuccessResponseWithMessage(c, "Call ended", nil)
}

func (h *CallHandler) writeCallError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, call.ErrCallActive):
		utils.ConflictResponse(c, "A call is already active for this event")
	case errors.Is(err, call.ErrNoCall):
		utils.NotFoundResponse(c, "No active call for this event")
	case errors.Is(err, call.ErrNotCallOwner):
		utils.ForbiddenResponse(c, "Only the caller who started the call may end it")
	case errors.Is(err, call.ErrRoomInactive):
		utils.ErrorResponse(c, http.StatusForbidden, "Calls are not available for this event")
	default:
		utils.InternalErrorResponse(c, "")
	}
}
