// Package paymentplans provides installment reminder plans layered over
// sales. Plans never move money; the scheduler publishes a reminder when
// an installment comes due.
package paymentplans

import (
	apphttp "estate_sales_backend/internal/http"
	"estate_sales_backend/internal/paymentplans/handler"
	"estate_sales_backend/internal/paymentplans/repository"
	"estate_sales_backend/internal/paymentplans/service"
	"estate_sales_backend/platform/events"
	"estate_sales_backend/platform/logger"
	"estate_sales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the payment plans domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new payment plans module.
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
	return "payment_plans"
}

// Service returns the service layer. The scheduler uses it to dispatch
// due reminders.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/payment-plans")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
