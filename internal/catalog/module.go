// Package catalog provides the service listing bounded context module.
package catalog

import (
	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/catalog/handler"
	"marketplace_backend/internal/catalog/repository"
	"marketplace_backend/internal/catalog/service"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module with all its dependencies.
func NewModule(pool *pgxpool.Pool, store storage.StorageService, bucket string, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, bucket, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
// Browsing is public; mutation requires authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/services")
	public.GET("", m.handler.List)
	public.GET("/categories", m.handler.Categories)

	protected := ctx.Protected.Group("/services")
	protected.GET("/mine", m.handler.ListMine)
	protected.POST("", m.handler.Create)
	protected.PUT("/:id", m.handler.Update)
	protected.DELETE("/:id", m.handler.Delete)
	protected.POST("/:id/image", m.handler.UploadImage)

	// Registered after the static routes so /categories and /mine win.
	public.GET("/:id", m.handler.Get)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
