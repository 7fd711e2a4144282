// Package payments provides the simulated payment bounded context module.
package payments

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/payments/handler"
	"marketplace_backend/internal/payments/repository"
	"marketplace_backend/internal/payments/service"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Module is the payments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the payments module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bookings service.BookingReader, sched scheduler.SettlementScheduler, bus events.Bus, cfg config.PaymentConfig, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bookings, sched, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// Service returns the service layer for cross-module adapters and the
// scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts payment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	payments := ctx.Protected.Group("/payments")

	payments.POST("/intents", m.handler.CreateIntent)
	payments.GET("/intents/:id", m.handler.GetIntent)
	payments.POST("/intents/:id/confirm", m.handler.Confirm)

	payments.POST("/methods", m.handler.CreateMethod)
	payments.GET("/methods", m.handler.ListMethods)
	payments.DELETE("/methods/:id", m.handler.DeleteMethod)
	payments.PATCH("/methods/:id/default", m.handler.SetDefaultMethod)

	payments.GET("/balance", m.handler.Balance)
	payments.POST("/balance/topup", m.handler.TopUp)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
