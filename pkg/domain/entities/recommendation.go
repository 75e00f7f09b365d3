package entities

import (
	"fmt"
	"strings"
)

// Urgency represents how soon a replenishment order must be placed.
// Values are ordered by declaration, so a higher value is more urgent.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

// String method for Urgency enum
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "LOW"
	case UrgencyMedium:
		return "MEDIUM"
	case UrgencyHigh:
		return "HIGH"
	case UrgencyCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseUrgency parses an urgency name, case-insensitively
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return UrgencyLow, nil
	case "MEDIUM":
		return UrgencyMedium, nil
	case "HIGH":
		return UrgencyHigh, nil
	case "CRITICAL":
		return UrgencyCritical, nil
	default:
		return UrgencyLow, fmt.Errorf("unknown urgency %q", s)
	}
}

// MarshalText encodes the urgency by name
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText decodes an urgency name
func (u *Urgency) UnmarshalText(text []byte) error {
	parsed, err := ParseUrgency(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Recommendation is the output of the replenishment engine for one SKU.
// When ReorderNeeded is false, OrderQuantity is 0, Urgency is LOW and both dates are nil.
type Recommendation struct {
	ReorderNeeded            bool    `json:"reorder_needed"`
	OrderQuantity            int     `json:"order_quantity"`
	Urgency                  Urgency `json:"urgency"`
	ProjectedStockAtLeadTime int     `json:"projected_stock_at_lead_time"`
	CurrentStock             int     `json:"current_stock"`
	DemandDuringLeadTime     float64 `json:"demand_during_lead_time"`
	ReorderPoint             int     `json:"reorder_point"`
	SafetyStock              int     `json:"safety_stock"`
	TargetStockLevel         int     `json:"target_stock_level"`
	SuggestedOrderDate       *Date   `json:"suggested_order_date"`
	ExpectedArrivalDate      *Date   `json:"expected_arrival_date"`
	Message                  string  `json:"message"`
}

// ForecastPoint is the predicted demand for a single future day
type ForecastPoint struct {
	Date           Date    `json:"date"`
	PredictedSales float64 `json:"predicted_sales"`
}

// ForecastSeries is an ordered daily forecast; index 0 is tomorrow
type ForecastSeries []ForecastPoint

// NewForecastSeries pairs demands with consecutive dates starting the day after today
func NewForecastSeries(today Date, demands []float64) ForecastSeries {
	series := make(ForecastSeries, len(demands))
	for i, d := range demands {
		series[i] = ForecastPoint{Date: today.AddDays(i + 1), PredictedSales: d}
	}
	return series
}

// Demands returns the predicted quantities in order
func (s ForecastSeries) Demands() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.PredictedSales
	}
	return out
}

// Total returns the summed predicted demand
func (s ForecastSeries) Total() float64 {
	var total float64
	for _, p := range s {
		total += p.PredictedSales
	}
	return total
}
