// Package bookings provides the booking bounded context module.
// Bookings move through a closed status machine; payment settlement is the
// only automatic trigger, everything else is requested by a booking party.
package bookings

import (
	"context"

	"marketplace_backend/internal/bookings/handler"
	"marketplace_backend/internal/bookings/repository"
	"marketplace_backend/internal/bookings/service"
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the bookings module with all its dependencies.
func NewModule(pool *pgxpool.Pool, services service.ServiceReader, reminders scheduler.ReminderScheduler, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, services, reminders, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookings"
}

// Service returns the service layer for the scheduler worker and adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts booking routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/bookings")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.ListMine)
	group.GET("/provider", m.handler.ListProvider)
	group.GET("/:id", m.handler.Get)
	group.PATCH("/:id/status", m.handler.UpdateStatus)
}

// RegisterHandlers subscribes to payment events for auto-confirmation.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.PaymentConfirmed{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PaymentConfirmed:
		return m.service.ConfirmPaid(ctx, e.BookingID)
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
