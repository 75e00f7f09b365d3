package dto

import (
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// ReplenishmentResult is a recommendation together with the inputs that produced it
// SKUPolicy is one row of the policy listing
type SKUPolicy struct {
	SKU    entities.SKUID         `json:"sku_id"`
	Policy entities.PolicySetting `json:"policy"`
}

type ReplenishmentResult struct {
	SKU            entities.SKUID          `json:"sku_id"`
	Policy         entities.PolicySetting  `json:"policy"`
	Forecast       entities.ForecastSeries `json:"forecast"`
	Recommendation entities.Recommendation `json:"recommendation"`
}

// StockStatus summarizes current stock against forecast demand
type StockStatus string

const (
	StockStatusReorderNow StockStatus = "REORDER NOW"
	StockStatusLow        StockStatus = "LOW STOCK"
	StockStatusOK         StockStatus = "STOCK OK"
)

// ForecastSummary is the forecast for a SKU with a coarse stock status
type ForecastSummary struct {
	SKU                 entities.SKUID          `json:"sku_id"`
	CurrentStock        int                     `json:"current_stock"`
	TotalForecastDemand float64                 `json:"total_forecast_demand"`
	StockStatus         StockStatus             `json:"stock_status"`
	Forecast            entities.ForecastSeries `json:"forecast"`
}

// HistoryResult is the recent sales history of a SKU, oldest first
type HistoryResult struct {
	SKU     entities.SKUID         `json:"sku_id"`
	Days    int                    `json:"days"`
	Records []entities.SalesRecord `json:"records"`
}

// SetPolicyRequest is the body accepted when updating a SKU's policy
type SetPolicyRequest struct {
	LeadTimeDays     *int `json:"lead_time_days"`
	MinOrderQty      *int `json:"min_order_qty"`
	ReorderPoint     *int `json:"reorder_point"`
	SafetyStock      *int `json:"safety_stock"`
	TargetStockLevel *int `json:"target_stock_level"`
}

// Policy builds the policy from the request, reporting the first missing field
func (r SetPolicyRequest) Policy() (entities.ReplenishmentPolicy, error) {
	fields := []struct {
		name  string
		value *int
	}{
		{"lead_time_days", r.LeadTimeDays},
		{"min_order_qty", r.MinOrderQty},
		{"reorder_point", r.ReorderPoint},
		{"safety_stock", r.SafetyStock},
		{"target_stock_level", r.TargetStockLevel},
	}
	for _, f := range fields {
		if f.value == nil {
			return entities.ReplenishmentPolicy{}, entities.NewValidationError(f.name, "is required")
		}
	}
	return entities.ReplenishmentPolicy{
		LeadTimeDays:     *r.LeadTimeDays,
		MinOrderQty:      *r.MinOrderQty,
		ReorderPoint:     *r.ReorderPoint,
		SafetyStock:      *r.SafetyStock,
		TargetStockLevel: *r.TargetStockLevel,
	}, nil
}

// TransactionRequest is the body accepted when recording sales and purchases.
// An omitted date means today.
type TransactionRequest struct {
	Date        *entities.Date `json:"transaction_date"`
	SalesQty    int            `json:"sales_qty"`
	PurchaseQty int            `json:"purchase_qty"`
}
