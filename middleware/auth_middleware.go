// middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
)

// RoleResolver answers the current role of a uid.
type RoleResolver interface {
	GetRole(ctx context.Context, uid string) (*models.RoleInfo, error)
}

// RequireRole looks the caller up in the role directory on every request
// and lets through only the allowed roles.
func RequireRole(roles RoleResolver, allowed ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := ExtractUserID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication required",
				})
			}

			info, err := roles.GetRole(c.Request().Context(), uid)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "No profile found for this account",
				})
			case errors.Is(err, repositories.ErrUpstreamUnavailable):
				c.Response().Header().Set("Retry-After", "5")
				return c.JSON(http.StatusServiceUnavailable, models.Response{
					Status:  http.StatusServiceUnavailable,
					Message: "Role directory is unavailable",
				})
			case err != nil:
				log.Error().Err(err).Str("uid", uid).Msg("role lookup failed")
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to resolve role",
				})
			}

			for _, role := range allowed {
				if info.Role == role {
					c.Set(roleKey, info)
					return next(c)
				}
			}

			log.Warn().Str("uid", uid).Str("role", string(info.Role)).Str("path", c.Path()).Msg("access denied")
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your role",
			})
		}
	}
}

// GetRoleInfo returns the role resolved by RequireRole.
func GetRoleInfo(c echo.Context) *models.RoleInfo {
	info, _ := c.Get(roleKey).(*models.RoleInfo)
	return info
}

// RequireNotBlocked rejects blocked accounts. It must run after RequireRole.
func RequireNotBlocked() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if info := GetRoleInfo(c); info == nil || info.IsBlocked {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Your account is blocked",
				})
			}
			return next(c)
		}
	}
}

// RequireBranchAccess limits workers to their home branch, taken from the
// named path parameter. Admins may access every branch.
func RequireBranchAccess(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			info := GetRoleInfo(c)
			if info == nil {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Access denied",
				})
			}
			if info.Role == models.RoleAdmin {
				return next(c)
			}
			if info.BranchID == nil || *info.BranchID != c.Param(param) {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "You can only access your own branch",
				})
			}
			return next(c)
		}
	}
}
