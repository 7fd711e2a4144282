package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/messaging/service"
	"marketplace_backend/internal/messaging/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

// Handler handles HTTP requests for messaging.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new messaging handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Send appends a message to the log.
// POST /api/v1/messages
func (h *Handler) Send(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Send(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Conversations lists the user's conversations, newest first.
// GET /api/v1/messages/conversations
func (h *Handler) Conversations(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Conversations(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Thread returns the exchange with one counterpart and marks it read.
// GET /api/v1/messages/thread/:userId
func (h *Handler) Thread(c *gin.Context) {
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user ID", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Thread(c.Request.Context(), identity.UserID(), otherID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UnreadCount returns the unread badge count.
// GET /api/v1/messages/unread
func (h *Handler) UnreadCount(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UnreadCount(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
