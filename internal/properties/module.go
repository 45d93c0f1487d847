// Package properties provides the property inventory module: estates,
// layouts and the houses and plots sold through the back office.
package properties

import (
	apphttp "estate_sales_backend/internal/http"
	"estate_sales_backend/internal/properties/handler"
	"estate_sales_backend/internal/properties/repository"
	"estate_sales_backend/internal/properties/service"
	"estate_sales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the properties domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new properties module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "properties"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	props := ctx.Protected.Group("/properties")
	m.handler.RegisterRoutes(props)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
