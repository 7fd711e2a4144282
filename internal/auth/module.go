// Package auth provides the authentication bounded context module.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/auth/handler"
	"marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/auth/service"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
// All routes sit behind the stricter per-IP auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	auth := ctx.V1.Group("/auth")
	auth.Use(ctx.AuthRateLimiter.RateLimit())

	auth.POST("/signup", m.handler.SignUp)
	auth.POST("/signin", m.handler.SignIn)
	auth.POST("/refresh", m.handler.Refresh)
	auth.POST("/logout", m.handler.SignOut)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
