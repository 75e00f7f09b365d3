package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/application/services"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// SKUHandler serves SKU listings, history, forecasts and transactions
type SKUHandler struct {
	inventory *services.InventoryService
	forecast  *services.ForecastService
}

func NewSKUHandler(inventory *services.InventoryService, forecast *services.ForecastService) *SKUHandler {
	return &SKUHandler{inventory: inventory, forecast: forecast}
}

// List returns every SKU with its current stock
func (h *SKUHandler) List(c *gin.Context) {
	skus, err := h.inventory.ListSKUs(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	if skus == nil {
		skus = []entities.SKU{}
	}
	Success(c, skus)
}

// History returns recent daily sales, oldest first
func (h *SKUHandler) History(c *gin.Context) {
	days, err := queryDays(c, services.DefaultHistoryDays)
	if err != nil {
		HandleError(c, err)
		return
	}

	history, err := h.inventory.History(c.Request.Context(), skuParam(c), days)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, history)
}

// Forecast returns predicted demand with a stock status
func (h *SKUHandler) Forecast(c *gin.Context) {
	days, err := queryDays(c, services.DefaultForecastDays)
	if err != nil {
		HandleError(c, err)
		return
	}

	summary, err := h.forecast.Forecast(c.Request.Context(), skuParam(c), days)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, summary)
}

// RecordTransaction applies sales and purchases to the SKU's stock
func (h *SKUHandler) RecordTransaction(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tx := entities.Transaction{
		SKU:         skuParam(c),
		SalesQty:    req.SalesQty,
		PurchaseQty: req.PurchaseQty,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	record, err := h.inventory.RecordTransaction(c.Request.Context(), tx)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, record)
}
