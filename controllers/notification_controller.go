package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/services"
)

// NotificationController carries worker messages to the owners
type NotificationController struct {
	messages *services.MessageService
}

func NewNotificationController(messages *services.MessageService) *NotificationController {
	return &NotificationController{messages: messages}
}

func (nc *NotificationController) SendMessage(c echo.Context) error {
	uid, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	var req models.OwnerMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	msg, err := nc.messages.SendMessage(c.Request().Context(), uid, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Message sent to the owners",
		Data:    msg,
	})
}

func (nc *NotificationController) ListMessages(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	msgs, err := nc.messages.ListMessages(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Messages retrieved successfully",
		Data:    msgs,
	})
}
