package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/profiles/service"
	"marketplace_backend/internal/profiles/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

// Handler handles HTTP requests for profiles.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new profiles handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Get returns the caller's own profile.
// GET /api/v1/profile
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update modifies the caller's profile.
// PUT /api/v1/profile
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UploadAvatar stores the caller's avatar image.
// POST /api/v1/profile/avatar
func (h *Handler) UploadAvatar(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read avatar file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.UploadAvatar(
		c.Request.Context(), identity.UserID(),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size,
	)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PublicProfile returns the public view of a provider (public).
// GET /api/v1/providers/:id
func (h *Handler) PublicProfile(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid provider ID", nil)
		return
	}

	result, err := h.svc.PublicProfile(c.Request.Context(), providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddPortfolioItem uploads a portfolio entry with its image.
// POST /api/v1/profile/portfolio
func (h *Handler) AddPortfolioItem(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreatePortfolioRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "image file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read image file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.AddPortfolioItem(
		c.Request.Context(), identity.UserID(), req,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size,
	)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListPortfolio returns a provider's portfolio (public).
// GET /api/v1/providers/:id/portfolio
func (h *Handler) ListPortfolio(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid provider ID", nil)
		return
	}

	result, err := h.svc.ListPortfolio(c.Request.Context(), providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeletePortfolioItem removes one of the caller's portfolio entries.
// DELETE /api/v1/profile/portfolio/:id
func (h *Handler) DeletePortfolioItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid portfolio item ID", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.DeletePortfolioItem(c.Request.Context(), identity.UserID(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
