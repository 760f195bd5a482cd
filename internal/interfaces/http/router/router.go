package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Order    *handler.OrderHandler
	Health   *handler.HealthHandler
}

// Setup mounts all routes on the engine. The authentication gate runs
// on every request and fails open; each group then states its own
// requirement, so anonymous callers browse the catalog but hit 401 at
// the order and admin surfaces.
func Setup(engine *gin.Engine, jwtService *auth.JWTService, handlers Handlers, logger *zap.Logger) {
	handlers.Health.RegisterRoutes(engine.Group(""))

	api := engine.Group("/api/v1")
	api.Use(middleware.AuthenticationGate(jwtService, logger))

	// Public: registration, login, catalog browsing
	handlers.Auth.RegisterPublicRoutes(api)
	handlers.Product.RegisterPublicRoutes(api)
	handlers.Category.RegisterPublicRoutes(api)

	// Any authenticated user
	authenticated := api.Group("")
	authenticated.Use(middleware.RequireAuthenticated())
	handlers.Auth.RegisterProtectedRoutes(authenticated)
	handlers.Order.RegisterUserRoutes(authenticated)

	// Admin only
	admin := api.Group("")
	admin.Use(middleware.RequireAdmin())
	handlers.Product.RegisterAdminRoutes(admin)
	handlers.Category.RegisterAdminRoutes(admin)
	handlers.Order.RegisterAdminRoutes(admin)
}
