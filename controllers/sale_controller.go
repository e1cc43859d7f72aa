package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/services"
)

const maxIdempotencyKey = 128

type SaleController struct {
	sales *services.SaleService
}

func NewSaleController(sales *services.SaleService) *SaleController {
	return &SaleController{sales: sales}
}

// RecordSale sells quantity units of an item on behalf of the caller
func (sc *SaleController) RecordSale(c echo.Context) error {
	uid, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	var req models.RecordSaleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	key := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if len(key) > maxIdempotencyKey {
		return badRequest(c, "Idempotency-Key is too long")
	}

	receipt, err := sc.sales.RecordSale(
		c.Request().Context(),
		c.Param("branchId"),
		c.Param("category"),
		c.Param("itemId"),
		uid,
		req.Quantity,
		key,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Sale recorded successfully",
		Data:    receipt,
	})
}
