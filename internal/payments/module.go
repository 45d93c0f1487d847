// Package payments provides the payment allocator module: recording
// payments against a sale's ledger and reversing them on deletion.
package payments

import (
	apphttp "estate_sales_backend/internal/http"
	"estate_sales_backend/internal/payments/handler"
	"estate_sales_backend/internal/payments/repository"
	"estate_sales_backend/internal/payments/service"
	"estate_sales_backend/platform/events"
	"estate_sales_backend/platform/logger"
	"estate_sales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the payments domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new payments module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "payments"
}

// Service returns the service layer for external use. The sales module
// uses it as its payment recorder.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/payments")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
