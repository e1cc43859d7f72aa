package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/controllers"
	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/websocket"
)

// Handlers bundles everything the route tables need
type Handlers struct {
	Verifier      middleware.TokenVerifier
	Roles         middleware.RoleResolver
	Hub           *websocket.Hub
	Catalog       *controllers.CatalogController
	Sales         *controllers.SaleController
	Reports       *controllers.ReportController
	Users         *controllers.UserController
	Notifications *controllers.NotificationController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, h *Handlers) {
	if h.Hub != nil {
		e.GET("/api/ws", websocket.HandleWebSocket(h.Hub, h.Verifier, h.Roles))
	}

	RegisterUserRoutes(e, h)
	RegisterBranchRoutes(e, h)
	RegisterNotificationRoutes(e, h)

	// Admin routes last so the /api/admin group owns its prefix
	RegisterAdminRoutes(e, h)
}
