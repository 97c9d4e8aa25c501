// Package handlers exposes the chat and call subsystems over HTTP. The
// handlers translate transport concerns into service calls; every
// authorization rule lives in the services, not here.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"eventbeta/internal/chat"
	"eventbeta/internal/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the message lifecycle endpoints.
type ChatHandler struct {
	service  *chat.Service
	uploader *chat.Uploader
}

// NewChatHandler creates a chat handler.
func NewChatHandler(service *chat.Service, uploader *chat.Uploader) *ChatHandler {
	return &ChatHandler{service: service, uploader: uploader}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage handles POST /events/:event_id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"content": "content is required"})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), chat.SendInput{
		EventID:    c.Param("event_id"),
		SenderUID:  c.GetString("user_id"),
		SenderName: c.GetString("username"),
		SenderRole: c.GetString("role"),
		Content:    req.Content,
	})
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	utils.CreatedResponse(c, msg)
}

// SendImage handles POST /events/:event_id/messages/image. The attachment
// arrives as a multipart form file.
func (h *ChatHandler) SendImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"image": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to read upload")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	msg, err := h.uploader.Upload(c.Request.Context(), chat.UploadInput{
		EventID:     c.Param("event_id"),
		SenderUID:   c.GetString("user_id"),
		SenderName:  c.GetString("username"),
		SenderRole:  c.GetString("role"),
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	utils.CreatedResponse(c, msg)
}

// EditMessage handles PUT /events/:event_id/messages/:message_id
func (h *ChatHandler) EditMessage(c *gin.Context) {
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"content": "content is required"})
		return
	}

	msg, err := h.service.Edit(c.Request.Context(), c.Param("message_id"), c.GetString("user_id"), req.Content)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	utils.SuccessResponse(c, msg)
}

// DeleteMessage handles DELETE /events/:event_id/messages/:message_id
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("message_id"), c.GetString("user_id"))
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	utils.SuccessResponseWithMessage(c, "Message deleted", nil)
}

// FlagMessage handles POST /events/:event_id/messages/:message_id/flag
func (h *ChatHandler) FlagMessage(c *gin.Context) {
	if !c.GetBool("authenticated") {
		utils.UnauthorizedResponse(c, "Flagging requires a signed-in account")
		return
	}

	err := h.service.Flag(c.Request.Context(), c.Param("message_id"), c.GetString("user_id"))
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	utils.SuccessResponseWithMessage(c, "Message flagged for review", nil)
}

// writeChatError maps service errors onto HTTP responses.
func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrContentTooLong):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrNotImage):
		utils.ErrorResponse(c, http.StatusUnsupportedMediaType, "Only image attachments are allowed")
	case errors.Is(err, chat.ErrImageTooLarge):
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Image exceeds the 5 MiB limit")
	case errors.Is(err, chat.ErrUploadInProgress):
		utils.ConflictResponse(c, "An upload is already in progress")
	case errors.Is(err, chat.ErrRoomInactive):
		utils.ForbiddenResponse(c, "Chat is not available for this event")
	case errors.Is(err, chat.ErrNotSender):
		utils.ForbiddenResponse(c, "Only the sender may modify this message")
	case errors.Is(err, chat.ErrOwnMessage):
		utils.ForbiddenResponse(c, "You cannot flag your own message")
	case errors.Is(err, chat.ErrImageMessage):
		utils.ErrorResponse(c, http.StatusBadRequest, "Image messages cannot be edited")
	case errors.Is(err, chat.ErrNotFound):
		utils.NotFoundResponse(c, "Message not found")
	default:
		utils.InternalErrorResponse(c, "")
	}
}
