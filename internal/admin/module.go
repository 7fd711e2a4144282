// Package admin provides the admin console bounded context module.
package admin

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/admin/handler"
	"marketplace_backend/internal/admin/repository"
	"marketplace_backend/internal/admin/service"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/logger"
)

// Module is the admin bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the admin module with all its dependencies.
func NewModule(pool *pgxpool.Pool, reviews service.ReviewModerator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, reviews, log)
	h := handler.New(svc)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes mounts admin routes. The Admin group already enforces
// authentication plus the admin role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/dashboard", m.handler.Dashboard)
	ctx.Admin.GET("/users", m.handler.ListUsers)
	ctx.Admin.DELETE("/services/:id", m.handler.RemoveService)
	ctx.Admin.DELETE("/reviews/:id", m.handler.RemoveReview)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
