// Package leads provides the lead routing bounded context module.
// A lead is a customer inquiry routed to providers under the exclusivity
// window policy: direct to one provider first, opened up when the window
// lapses, claimed by whichever provider replies first.
package leads

import (
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/leads/handler"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/service"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, fees service.FeeCharger, pricer service.ServicePricer, bus events.Bus, cfg config.LeadPolicyConfig, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, fees, pricer, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for adapters and the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetReplyWriter injects the messaging reply writer (breaks circular dependency).
func (m *Module) SetReplyWriter(reply service.ReplyWriter) {
	m.service.SetReplyWriter(reply)
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.POST("", m.handler.Submit)
	group.GET("/inbox", m.handler.Inbox)
	group.GET("/opportunities", m.handler.Opportunities)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/respond", m.handler.Respond)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
