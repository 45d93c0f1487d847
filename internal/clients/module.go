// Package clients provides the client account module. Accounts are
// provisioned automatically the first time a contact appears on a sale.
package clients

import (
	"estate_sales_backend/internal/clients/handler"
	"estate_sales_backend/internal/clients/repository"
	"estate_sales_backend/internal/clients/service"
	"estate_sales_backend/internal/events"
	apphttp "estate_sales_backend/internal/http"
	"estate_sales_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the clients domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new clients module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, cfg config.ClientAccountConfig, eventBus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "clients"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/clients")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
