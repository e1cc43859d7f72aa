package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, h *Handlers) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.Authenticate(h.Verifier))
	admin.Use(middleware.RequireRole(h.Roles, models.RoleAdmin))

	// Catalog management
	admin.POST("/branches", h.Catalog.CreateBranch)
	admin.PUT("/branches/:branchId/categories", h.Catalog.UpsertCategory)
	admin.POST("/branches/:branchId/categories/:category/items", h.Catalog.AddItem)
	admin.PATCH("/branches/:branchId/categories/:category/items/:itemId", h.Catalog.UpdateItem)
	admin.POST("/branches/:branchId/categories/:category/items/:itemId/image", h.Catalog.UploadItemImage)

	// Dashboards
	admin.GET("/sales/branches", h.Reports.AllBranches)
	admin.GET("/overview", h.Reports.Overview)
	admin.GET("/low-stock", h.Reports.LowStock)

	// Users
	admin.GET("/workers", h.Users.ListWorkers)
	admin.PUT("/users/:uid/role", h.Users.SetRole)
	admin.POST("/users/:uid/toggle-block", h.Users.ToggleBlocked)

	// Messages from workers
	admin.GET("/messages", h.Notifications.ListMessages)
}
