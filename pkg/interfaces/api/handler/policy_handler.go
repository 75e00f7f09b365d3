package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/application/services"
)

// PolicyHandler serves per-SKU replenishment settings
type PolicyHandler struct {
	svc *services.PolicyService
}

func NewPolicyHandler(svc *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{svc: svc}
}

// Get returns the SKU's policy, flagged default when never configured
func (h *PolicyHandler) Get(c *gin.Context) {
	setting, err := h.svc.Get(c.Request.Context(), skuParam(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, setting)
}

// List returns the effective policy of every SKU
func (h *PolicyHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, list)
}

// Update replaces the SKU's policy
func (h *PolicyHandler) Update(c *gin.Context) {
	var req dto.SetPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	policy, err := req.Policy()
	if err != nil {
		HandleError(c, err)
		return
	}

	setting, err := h.svc.Set(c.Request.Context(), skuParam(c), policy)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, setting)
}
