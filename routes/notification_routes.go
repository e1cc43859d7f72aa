package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
)

// RegisterNotificationRoutes registers the worker-to-owner message route
func RegisterNotificationRoutes(e *echo.Echo, h *Handlers) {
	messages := e.Group("/api/messages")
	messages.Use(middleware.Authenticate(h.Verifier))
	messages.Use(middleware.RequireRole(h.Roles, models.RoleWorker))
	messages.Use(middleware.RequireNotBlocked())

	messages.POST("", h.Notifications.SendMessage)
}
