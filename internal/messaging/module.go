// Package messaging provides the message relay bounded context module.
package messaging

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/messaging/cache"
	"marketplace_backend/internal/messaging/handler"
	"marketplace_backend/internal/messaging/repository"
	"marketplace_backend/internal/messaging/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Module is the messaging bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the messaging module with all its
// dependencies. A nil Redis client disables the unread cache; counts are
// then served from the database on every request.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, claimer service.LeadClaimer, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cache.NewUnreadCache(redisClient), claimer, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "messaging"
}

// Service returns the service layer for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts messaging routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	messages := ctx.Protected.Group("/messages")
	messages.POST("", m.handler.Send)
	messages.GET("/conversations", m.handler.Conversations)
	messages.GET("/thread/:userId", m.handler.Thread)
	messages.GET("/unread", m.handler.UnreadCount)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
