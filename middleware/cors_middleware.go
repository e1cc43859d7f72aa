package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Origins of the dashboard during development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8080",
}

// CORSOrigins merges the development origins with a comma-separated list.
func CORSOrigins(extra string) []string {
	origins := append([]string{}, defaultOrigins...)
	for _, origin := range strings.Split(extra, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// GlobalCORS creates the CORS middleware for the dashboard clients
func GlobalCORS(origins []string) echo.MiddlewareFunc {
	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Idempotency-Key"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Retry-After"},
		MaxAge:           86400, // 24 hours
	})
}
