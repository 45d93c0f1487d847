package http

import (
	"github.com/gin-gonic/gin"

	"estate_sales_backend/platform/config"
)

// Module is implemented by every feature module that exposes HTTP routes.
type Module interface {
	// Name returns the module name for logging.
	Name() string
	// RegisterRoutes mounts the module's routes on the router.
	RegisterRoutes(rc *RouterContext)
}

// RouterContext carries the route groups and shared middleware a module
// needs to mount itself.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the public /api/v1 group (rate limited, unauthenticated).
	V1 *gin.RouterGroup
	// Protected is the /api/v1 group behind JWT authentication.
	Protected *gin.RouterGroup
	// Config is the full application configuration.
	Config *config.Config
	// AuthMiddleware is the JWT middleware for routes that opt in individually.
	AuthMiddleware gin.HandlerFunc
}
