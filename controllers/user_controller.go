// controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/services"
)

// UserController exposes the role directory
type UserController struct {
	roles *services.RoleDirectory
}

func NewUserController(roles *services.RoleDirectory) *UserController {
	return &UserController{roles: roles}
}

// EnsureProfile creates the caller's user document on first sign-in
func (uc *UserController) EnsureProfile(c echo.Context) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	var req models.ProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := uc.roles.EnsureProfile(c.Request().Context(), id.UID, req.Name, id.Email, req.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile ready",
		Data:    user,
	})
}

// GetMyRole reports the caller's current role and home branch
func (uc *UserController) GetMyRole(c echo.Context) error {
	uid, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}
	info, err := uc.roles.GetRole(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Role retrieved successfully",
		Data:    info,
	})
}

func (uc *UserController) ListWorkers(c echo.Context) error {
	workers, err := uc.roles.ListWorkers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Workers retrieved successfully",
		Data:    workers,
	})
}

// SetRole assigns admin, worker or none to a user
func (uc *UserController) SetRole(c echo.Context) error {
	var req models.SetRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	uid := c.Param("uid")
	if err := uc.roles.SetRole(c.Request().Context(), uid, req.Role, req.BranchID); err != nil {
		return respondError(c, err)
	}
	info, err := uc.roles.GetRole(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Role updated successfully",
		Data:    info,
	})
}

func (uc *UserController) ToggleBlocked(c echo.Context) error {
	blocked, err := uc.roles.ToggleBlocked(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Block status updated",
		Data:    map[string]bool{"isBlocked": blocked},
	})
}
