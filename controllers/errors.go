package controllers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
	"github.com/HSouheill/branchstock_backend/services"
)

const retryAfterSeconds = "5"

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
// It writes nothing; callers answer a failure with respondError.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &services.ValidationError{Fields: map[string]string{"body": "invalid request body"}}
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &services.ValidationError{Fields: map[string]string{"body": err.Error()}}
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on " + fe.Tag()
		}
		return &services.ValidationError{Fields: fields}
	}
	return nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: msg,
	})
}

// respondError maps the service error taxonomy onto the response envelope.
func respondError(c echo.Context, err error) error {
	var (
		verr    *services.ValidationError
		partial *services.PartialFailureError
	)

	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    map[string]interface{}{"fields": verr.Fields},
		})
	case errors.Is(err, services.ErrBranchRequired):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
			Data:    map[string]interface{}{"fields": map[string]string{"branchId": "required for worker"}},
		})
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrIdempotencyKeyReused):
		return c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  http.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrSaleInProgress), errors.Is(err, repositories.ErrDuplicate), errors.Is(err, repositories.ErrConflict):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: err.Error(),
		})
	case errors.As(err, &partial):
		log.Error().Err(err).Str("path", c.Path()).Msg("partial failure")
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Operation partially failed",
			Data: map[string]interface{}{
				"operation": partial.Operation,
				"completed": partial.Completed,
				"failed":    partial.Failed,
			},
		})
	case errors.Is(err, services.ErrUpstreamUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unavailable")
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Service temporarily unavailable, please retry",
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}
