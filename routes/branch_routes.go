package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
)

// RegisterBranchRoutes registers the catalog, checkout and report routes
// shared by workers and admins. Workers are confined to their home branch.
func RegisterBranchRoutes(e *echo.Echo, h *Handlers) {
	api := e.Group("/api/branches")
	api.Use(middleware.Authenticate(h.Verifier))
	api.GET("", h.Catalog.ListBranches)

	branch := api.Group("/:branchId")
	branch.Use(middleware.RequireRole(h.Roles, models.RoleAdmin, models.RoleWorker))
	branch.Use(middleware.RequireBranchAccess("branchId"))

	branch.GET("", h.Catalog.GetBranch)
	branch.GET("/categories", h.Catalog.ListCategories)
	branch.GET("/categories/:category/items", h.Catalog.ListItems)
	branch.GET("/categories/:category/items/:itemId", h.Catalog.GetItem)
	branch.GET("/categories/:category/items/:itemId/label", h.Catalog.GetItemLabel)
	branch.POST("/categories/:category/items/:itemId/sales", h.Sales.RecordSale, middleware.RequireNotBlocked())

	branch.GET("/sales", h.Reports.SalesReport)
	branch.GET("/sales/rollup", h.Reports.Rollup)
	branch.GET("/low-stock", h.Reports.BranchLowStock)
}
