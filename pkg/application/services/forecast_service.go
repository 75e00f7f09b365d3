package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

const (
	DefaultForecastDays = 7
	MaxForecastDays     = 365
)

// lowStockFactor marks stock within 20% above forecast demand as low
var lowStockFactor = decimal.RequireFromString("1.2")

// ForecastService reports predicted demand against current stock
type ForecastService struct {
	deps Dependencies
}

func NewForecastService(deps Dependencies) *ForecastService {
	return &ForecastService{deps: deps.withDefaults()}
}

// Forecast returns the next days days of demand for a SKU with a stock status
func (s *ForecastService) Forecast(ctx context.Context, sku entities.SKUID, days int) (*dto.ForecastSummary, error) {
	if err := validateDays(days, MaxForecastDays); err != nil {
		return nil, err
	}

	today := s.deps.Clock()
	stock, err := s.deps.Inventory.GetCurrentStock(ctx, sku)
	if err != nil {
		return nil, err
	}

	demands, err := s.deps.Forecaster.Forecast(ctx, sku, days, today)
	if err != nil {
		return nil, fmt.Errorf("failed to forecast %s: %w", sku, err)
	}

	series := entities.NewForecastSeries(entities.DateOf(today), demands)
	total := decimal.NewFromFloat(series.Total()).Round(2)

	return &dto.ForecastSummary{
		SKU:                 sku,
		CurrentStock:        stock,
		TotalForecastDemand: total.InexactFloat64(),
		StockStatus:         StockStatusFor(stock, total),
		Forecast:            series,
	}, nil
}

// StockStatusFor classifies stock against total forecast demand
func StockStatusFor(stock int, total decimal.Decimal) dto.StockStatus {
	s := decimal.NewFromInt(int64(stock))
	switch {
	case s.LessThan(total):
		return dto.StockStatusReorderNow
	case s.LessThan(total.Mul(lowStockFactor)):
		return dto.StockStatusLow
	default:
		return dto.StockStatusOK
	}
}
