package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/replenish/pkg/application/services"
)

// ReplenishmentHandler serves order recommendations
type ReplenishmentHandler struct {
	svc         *services.ReplenishmentService
	defaultDays int
}

func NewReplenishmentHandler(svc *services.ReplenishmentService, defaultDays int) *ReplenishmentHandler {
	if defaultDays < 1 {
		defaultDays = services.DefaultRecommendDays
	}
	return &ReplenishmentHandler{svc: svc, defaultDays: defaultDays}
}

// Get returns the recommendation for one SKU
func (h *ReplenishmentHandler) Get(c *gin.Context) {
	days, err := queryDays(c, h.defaultDays)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.svc.Recommend(c.Request.Context(), skuParam(c), days)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// List returns recommendations for every SKU, most urgent first
func (h *ReplenishmentHandler) List(c *gin.Context) {
	days, err := queryDays(c, h.defaultDays)
	if err != nil {
		HandleError(c, err)
		return
	}

	results, err := h.svc.RecommendAll(c.Request.Context(), days)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, results)
}
