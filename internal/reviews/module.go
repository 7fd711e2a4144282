// Package reviews provides the service review bounded context module.
package reviews

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/reviews/handler"
	"marketplace_backend/internal/reviews/repository"
	"marketplace_backend/internal/reviews/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Module is the reviews bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the reviews module with all its dependencies.
func NewModule(pool *pgxpool.Pool, ratings service.RatingWriter, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, ratings, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reviews"
}

// Service returns the service layer for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts review routes on the provided router context.
// Reading reviews is public; writing requires authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/services/:id/reviews", m.handler.ListForService)

	reviews := ctx.Protected.Group("/reviews")
	reviews.POST("", m.handler.Create)
	reviews.PUT("/:id", m.handler.Update)
	reviews.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
