package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/services"
)

const maxImageUpload = 10 << 20

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

func (cc *CatalogController) ListBranches(c echo.Context) error {
	branches, err := cc.catalog.ListBranches(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Branches retrieved successfully",
		Data:    branches,
	})
}

func (cc *CatalogController) GetBranch(c echo.Context) error {
	branch, err := cc.catalog.GetBranch(c.Request().Context(), c.Param("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Branch retrieved successfully",
		Data:    branch,
	})
}

func (cc *CatalogController) CreateBranch(c echo.Context) error {
	var req models.CreateBranchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	branch, err := cc.catalog.CreateBranch(c.Request().Context(), req.ID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Branch created successfully",
		Data:    branch,
	})
}

func (cc *CatalogController) ListCategories(c echo.Context) error {
	categories, err := cc.catalog.ListCategories(c.Request().Context(), c.Param("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Categories retrieved successfully",
		Data:    categories,
	})
}

// UpsertCategory creates a category or merges new fields into an existing one
func (cc *CatalogController) UpsertCategory(c echo.Context) error {
	var req models.UpsertCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := cc.catalog.UpsertCategory(c.Request().Context(), c.Param("branchId"), req.Name, req.Fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category saved successfully",
		Data:    category,
	})
}

func (cc *CatalogController) ListItems(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := cc.catalog.ListItems(
		c.Request().Context(),
		c.Param("branchId"),
		c.Param("category"),
		c.QueryParam("search"),
		page,
		limit,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Items retrieved successfully",
		Data:    result,
	})
}

func (cc *CatalogController) GetItem(c echo.Context) error {
	item, err := cc.catalog.GetItem(c.Request().Context(), c.Param("branchId"), c.Param("category"), c.Param("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Item retrieved successfully",
		Data:    item,
	})
}

// decodeFields reads a free-form JSON object keeping numbers exact.
func decodeFields(c echo.Context) (map[string]interface{}, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	fields := map[string]interface{}{}
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (cc *CatalogController) AddItem(c echo.Context) error {
	fields, err := decodeFields(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	id, err := cc.catalog.AddItem(c.Request().Context(), c.Param("branchId"), c.Param("category"), fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Item added successfully",
		Data:    map[string]string{"id": id},
	})
}

// UpdateItem edits price, warranty or stock of an item
func (cc *CatalogController) UpdateItem(c echo.Context) error {
	partial, err := decodeFields(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	item, err := cc.catalog.UpdateItem(c.Request().Context(), c.Param("branchId"), c.Param("category"), c.Param("itemId"), partial)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Item updated successfully",
		Data:    item,
	})
}

// UploadItemImage accepts a multipart "image" file for an item
func (cc *CatalogController) UploadItemImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file is required")
	}
	if file.Size > maxImageUpload {
		return badRequest(c, "Image is too large")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Failed to read image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageUpload+1))
	if err != nil {
		return badRequest(c, "Failed to read image")
	}

	url, err := cc.catalog.AttachItemImage(
		c.Request().Context(),
		c.Param("branchId"),
		c.Param("category"),
		c.Param("itemId"),
		data,
		file.Filename,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Image uploaded successfully",
		Data:    map[string]string{"imageUrl": url},
	})
}

// GetItemLabel returns a PNG QR label for the item
func (cc *CatalogController) GetItemLabel(c echo.Context) error {
	png, err := cc.catalog.ItemLabel(c.Request().Context(), c.Param("branchId"), c.Param("category"), c.Param("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
