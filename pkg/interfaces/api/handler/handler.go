package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/replenish/pkg/application/services"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Handlers groups the API handlers
type Handlers struct {
	SKU           *SKUHandler
	Replenishment *ReplenishmentHandler
	Policy        *PolicyHandler
	// Events is nil when no event log is configured
	Events *EventHandler
}

// Services are the application services the handlers call
type Services struct {
	Inventory     *services.InventoryService
	Forecast      *services.ForecastService
	Replenishment *services.ReplenishmentService
	Policy        *services.PolicyService
	// Events is optional
	Events EventLog
	// DefaultDays is the forecast length used when a recommendation request omits days
	DefaultDays int
}

func NewHandlers(svc Services) *Handlers {
	h := &Handlers{
		SKU:           NewSKUHandler(svc.Inventory, svc.Forecast),
		Replenishment: NewReplenishmentHandler(svc.Replenishment, svc.DefaultDays),
		Policy:        NewPolicyHandler(svc.Policy),
	}
	if svc.Events != nil {
		h.Events = NewEventHandler(svc.Events)
	}
	return h
}

// Response is the envelope of every API response
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a 200 response
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 response
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error response; the HTTP status is code/100
func Error(c *gin.Context, code int, message string, data any) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message, nil)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message, nil)
}

// FieldError carries the offending field of a validation failure
type FieldError struct {
	Field string `json:"field"`
}

// HandleError maps domain errors onto API responses
func HandleError(c *gin.Context, err error) {
	var verr *entities.ValidationError
	var nferr *entities.NotFoundError
	switch {
	case errors.As(err, &verr):
		Error(c, 40000, verr.Error(), FieldError{Field: verr.Field})
	case errors.As(err, &nferr):
		NotFound(c, nferr.Error())
	default:
		_ = c.Error(err)
		InternalError(c, "internal server error")
	}
}

// queryDays parses the days query parameter, falling back to def when absent
func queryDays(c *gin.Context, def int) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entities.NewValidationError("days", "must be an integer, got %q", raw)
	}
	return days, nil
}

func skuParam(c *gin.Context) entities.SKUID {
	return entities.SKUID(c.Param("sku_id"))
}
