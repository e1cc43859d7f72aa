package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/services"
)

type ReportController struct {
	aggregator *services.AggregatorService
	lowStock   *services.LowStockService
}

func NewReportController(aggregator *services.AggregatorService, lowStock *services.LowStockService) *ReportController {
	return &ReportController{aggregator: aggregator, lowStock: lowStock}
}

// reportScope reads window and worker filters. Workers only ever see
// their own sales.
func reportScope(c echo.Context) (models.Window, string) {
	window := models.Window(c.QueryParam("window"))
	if window == "" {
		window = models.WindowToday
	}
	workerID := c.QueryParam("workerId")
	if info := middleware.GetRoleInfo(c); info != nil && info.Role == models.RoleWorker {
		workerID = info.UID
	}
	return window, workerID
}

func (rc *ReportController) SalesReport(c echo.Context) error {
	window, workerID := reportScope(c)
	report, err := rc.aggregator.SalesReport(c.Request().Context(), c.Param("branchId"), window, workerID, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Sales retrieved successfully",
		Data:    report,
	})
}

func (rc *ReportController) Rollup(c echo.Context) error {
	window, workerID := reportScope(c)
	rollup, err := rc.aggregator.Rollup(c.Request().Context(), c.Param("branchId"), window, workerID, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Rollup computed successfully",
		Data:    rollup,
	})
}

// AllBranches returns the daily and weekly totals of every branch
func (rc *ReportController) AllBranches(c echo.Context) error {
	rows, err := rc.aggregator.AllBranchesRollup(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Branch sales retrieved successfully",
		Data:    rows,
	})
}

func (rc *ReportController) Overview(c echo.Context) error {
	overview, err := rc.aggregator.Overview(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Overview retrieved successfully",
		Data:    overview,
	})
}

func (rc *ReportController) LowStock(c echo.Context) error {
	threshold, _ := strconv.Atoi(c.QueryParam("threshold"))
	result, err := rc.lowStock.Scan(c.Request().Context(), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Low stock items retrieved successfully",
		Data:    result,
	})
}

func (rc *ReportController) BranchLowStock(c echo.Context) error {
	threshold, _ := strconv.Atoi(c.QueryParam("threshold"))
	result, err := rc.lowStock.ScanBranch(c.Request().Context(), c.Param("branchId"), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Low stock items retrieved successfully",
		Data:    result,
	})
}
