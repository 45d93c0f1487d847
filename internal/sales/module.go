// Package sales provides the sale lifecycle module: direct creation,
// public purchase applications, existing-client sales and approval.
package sales

import (
	apphttp "estate_sales_backend/internal/http"
	"estate_sales_backend/internal/sales/handler"
	"estate_sales_backend/internal/sales/repository"
	"estate_sales_backend/internal/sales/service"
	"estate_sales_backend/platform/events"
	"estate_sales_backend/platform/httpkit"
	"estate_sales_backend/platform/logger"
	"estate_sales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the sales domain module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
	publicLimiter *httpkit.PublicRateLimiter
}

// NewModule creates a new sales module. The property, reservation and
// client collaborators arrive as service ports wired by the adapters
// package; the payment recorder is attached later because payments and
// sales depend on each other.
func NewModule(
	pool *pgxpool.Pool,
	properties service.PropertyStore,
	reservations service.ReservationChecker,
	clients service.ClientDirectory,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, properties, reservations, clients, log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
		service:       svc,
		publicLimiter: httpkit.NewPublicRateLimiter(log),
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "sales"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/sales")
	m.handler.RegisterRoutes(group)

	// Public routes carry a stricter rate limit and no auth middleware.
	public := ctx.V1.Group("/public/sales")
	public.Use(m.publicLimiter.RateLimit())
	m.publicHandler.RegisterRoutes(public)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
