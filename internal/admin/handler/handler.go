package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/admin/service"
	"marketplace_backend/internal/admin/transport"
	"marketplace_backend/platform/httpkit"
)

// Handler handles HTTP requests for the admin console.
type Handler struct {
	svc *service.Service
}

// New creates a new admin handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Dashboard returns the headline platform stats.
// GET /api/v1/admin/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	result, err := h.svc.Dashboard(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListUsers returns the paginated account list.
// GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	var req transport.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", nil)
		return
	}

	result, err := h.svc.ListUsers(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveService takes a listing down.
// DELETE /api/v1/admin/services/:id
func (h *Handler) RemoveService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid service ID", nil)
		return
	}

	if err := h.svc.RemoveService(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveReview takes a review down.
// DELETE /api/v1/admin/reviews/:id
func (h *Handler) RemoveReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid review ID", nil)
		return
	}

	if err := h.svc.RemoveReview(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
