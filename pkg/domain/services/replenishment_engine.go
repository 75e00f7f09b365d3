package services

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// CriticalWindowMarginDays is the fixed margin added to the lead time when summing demand
const CriticalWindowMarginDays = 7

// ReplenishmentEngine turns a demand forecast into an order recommendation.
// It holds no state and is safe for concurrent use.
type ReplenishmentEngine struct{}

// NewReplenishmentEngine creates a new replenishment engine
func NewReplenishmentEngine() *ReplenishmentEngine {
	return &ReplenishmentEngine{}
}

// CriticalWindow returns the number of forecast days summed for a policy given n available days
func CriticalWindow(policy entities.ReplenishmentPolicy, n int) int {
	w := policy.LeadTimeDays + CriticalWindowMarginDays
	if n < w {
		w = n
	}
	if w < 0 {
		return 0
	}
	return w
}

// ForecastHorizon returns the horizon to request from a forecaster so the critical window is covered
func ForecastHorizon(requestedDays int, policy entities.ReplenishmentPolicy) int {
	required := policy.LeadTimeDays + CriticalWindowMarginDays
	if requestedDays > required {
		return requestedDays
	}
	return required
}

// CheckForecastCoverage reports an InsufficientDataError when n days do not cover the critical window.
// The engine still accepts short forecasts; callers use this to log the condition.
func CheckForecastCoverage(policy entities.ReplenishmentPolicy, n int) error {
	required := policy.LeadTimeDays + CriticalWindowMarginDays
	if n < required {
		return &entities.InsufficientDataError{Required: required, Available: n}
	}
	return nil
}

// CalculateRecommendation computes the replenishment recommendation for one SKU.
// A forecast shorter than the critical window is summed as far as it goes.
func (e *ReplenishmentEngine) CalculateRecommendation(
	currentStock int,
	forecast []float64,
	policy entities.ReplenishmentPolicy,
	today time.Time,
) entities.Recommendation {
	window := CriticalWindow(policy, len(forecast))

	demand := decimal.Zero
	for _, d := range forecast[:window] {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		demand = demand.Add(decimal.NewFromFloat(d))
	}

	projected := decimal.NewFromInt(int64(currentStock)).Sub(demand)
	reorderPoint := decimal.NewFromInt(int64(policy.ReorderPoint))
	safetyStock := decimal.NewFromInt(int64(policy.SafetyStock))

	rec := entities.Recommendation{
		ReorderNeeded:            projected.LessThanOrEqual(reorderPoint),
		Urgency:                  entities.UrgencyLow,
		ProjectedStockAtLeadTime: int(projected.IntPart()),
		CurrentStock:             currentStock,
		DemandDuringLeadTime:     demand.Round(2).InexactFloat64(),
		ReorderPoint:             policy.ReorderPoint,
		SafetyStock:              policy.SafetyStock,
		TargetStockLevel:         policy.TargetStockLevel,
	}

	if !rec.ReorderNeeded {
		rec.Message = recommendationMessage(rec)
		return rec
	}

	// Safety stock is added on top of the gap to target
	unitsNeeded := decimal.NewFromInt(int64(policy.TargetStockLevel)).Sub(projected).Add(safetyStock)
	if unitsNeeded.IsPositive() {
		rec.OrderQuantity = roundUpToMultiple(unitsNeeded, policy.MinOrderQty)
	}

	switch {
	case projected.LessThan(safetyStock):
		rec.Urgency = entities.UrgencyCritical
	case projected.LessThan(reorderPoint):
		rec.Urgency = entities.UrgencyHigh
	default:
		rec.Urgency = entities.UrgencyMedium
	}

	orderDate := entities.DateOf(today)
	rec.SuggestedOrderDate = &orderDate
	if rec.OrderQuantity > 0 {
		arrival := orderDate.AddDays(policy.LeadTimeDays)
		rec.ExpectedArrivalDate = &arrival
	}

	rec.Message = recommendationMessage(rec)
	return rec
}

// roundUpToMultiple returns the smallest multiple of moq that is at least units
func roundUpToMultiple(units decimal.Decimal, moq int) int {
	if moq < 1 {
		moq = 1
	}
	step := decimal.NewFromInt(int64(moq))
	packs, remainder := units.QuoRem(step, 0)
	if remainder.IsPositive() {
		packs = packs.Add(decimal.NewFromInt(1))
	}
	return int(packs.IntPart()) * moq
}

func recommendationMessage(rec entities.Recommendation) string {
	if !rec.ReorderNeeded {
		return fmt.Sprintf(
			"No reorder needed. Projected stock in lead time: %d units.",
			rec.ProjectedStockAtLeadTime,
		)
	}

	switch rec.Urgency {
	case entities.UrgencyCritical:
		return fmt.Sprintf(
			"⚠️ CRITICAL: Projected stock will drop to %d units. Order %d units immediately!",
			rec.ProjectedStockAtLeadTime,
			rec.OrderQuantity,
		)
	case entities.UrgencyHigh:
		return fmt.Sprintf(
			"⚠️ HIGH PRIORITY: Projected stock will be %d units. Recommend ordering %d units.",
			rec.ProjectedStockAtLeadTime,
			rec.OrderQuantity,
		)
	case entities.UrgencyMedium:
		return fmt.Sprintf("Order recommendation: %d units to maintain target stock level.", rec.OrderQuantity)
	case entities.UrgencyLow:
		return "Review replenishment settings."
	default:
		return "Review replenishment settings."
	}
}
