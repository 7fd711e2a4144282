// Package profiles provides the user profile bounded context module.
package profiles

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/adapters/storage"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/profiles/handler"
	"marketplace_backend/internal/profiles/repository"
	"marketplace_backend/internal/profiles/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Module is the profiles bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the profiles module with all its dependencies.
func NewModule(pool *pgxpool.Pool, store storage.StorageService, buckets service.Buckets, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, buckets, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "profiles"
}

// Service returns the service layer for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts profile routes on the provided router context.
// Provider pages are public; everything else is the caller's own profile.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/providers/:id", m.handler.PublicProfile)
	ctx.V1.GET("/providers/:id/portfolio", m.handler.ListPortfolio)

	profile := ctx.Protected.Group("/profile")
	profile.GET("", m.handler.Get)
	profile.PUT("", m.handler.Update)
	profile.POST("/avatar", m.handler.UploadAvatar)
	profile.POST("/portfolio", m.handler.AddPortfolioItem)
	profile.DELETE("/portfolio/:id", m.handler.DeletePortfolioItem)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
