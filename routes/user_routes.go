package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
)

// RegisterUserRoutes registers routes available to any signed-in account
func RegisterUserRoutes(e *echo.Echo, h *Handlers) {
	me := e.Group("/api/users/me")
	me.Use(middleware.Authenticate(h.Verifier))

	me.POST("", h.Users.EnsureProfile)
	me.GET("/role", h.Users.GetMyRole)
}
