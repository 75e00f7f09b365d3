package services

import (
	"context"
	"time"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Forecaster predicts daily demand for a SKU.
// Implementations return exactly horizonDays non-negative values; index 0 is the day after today.
type Forecaster interface {
	Forecast(ctx context.Context, sku entities.SKUID, horizonDays int, today time.Time) ([]float64, error)
}
