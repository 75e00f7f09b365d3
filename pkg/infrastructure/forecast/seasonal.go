package forecast

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
	"github.com/vsinha/replenish/pkg/domain/services"
)

// SeasonalForecaster predicts demand from recent same-weekday sales scaled by a monthly seasonal index
type SeasonalForecaster struct {
	inventory     repositories.InventoryRepository
	lookbackWeeks int
	historyDays   int
}

// NewSeasonalForecaster creates a forecaster reading up to historyDays of history per SKU
func NewSeasonalForecaster(inventory repositories.InventoryRepository, lookbackWeeks, historyDays int) *SeasonalForecaster {
	if lookbackWeeks < 1 {
		lookbackWeeks = 1
	}
	return &SeasonalForecaster{
		inventory:     inventory,
		lookbackWeeks: lookbackWeeks,
		historyDays:   historyDays,
	}
}

// Verify interface compliance
var _ services.Forecaster = (*SeasonalForecaster)(nil)

// Forecast returns horizonDays estimates starting the day after today
func (f *SeasonalForecaster) Forecast(ctx context.Context, sku entities.SKUID, horizonDays int, today time.Time) ([]float64, error) {
	if horizonDays < 1 {
		return nil, entities.NewValidationError("days", "must be at least 1, got %d", horizonDays)
	}

	history, err := f.inventory.GetHistory(ctx, sku, f.historyDays)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, entities.NewSKUNotFoundError(sku)
	}

	model := fit(history, f.lookbackWeeks)

	start := entities.DateOf(today)
	forecast := make([]float64, horizonDays)
	for i := range forecast {
		day := start.AddDays(i + 1)
		forecast[i] = model.predict(day.Weekday(), day.Month())
	}
	return forecast, nil
}

// model holds deseasonalized weekday levels and per-month seasonal indices
type model struct {
	weekdayLevel [7]float64
	monthIndex   [13]float64
}

func fit(history []entities.SalesRecord, lookbackWeeks int) model {
	var m model

	var total float64
	var monthTotal [13]float64
	var monthCount [13]int
	for _, r := range history {
		total += float64(r.SalesQty)
		monthTotal[r.SaleDate.Month()] += float64(r.SalesQty)
		monthCount[r.SaleDate.Month()]++
	}
	overall := total / float64(len(history))

	for month := 1; month <= 12; month++ {
		m.monthIndex[month] = 1
		if overall > 0 && monthCount[month] > 0 {
			m.monthIndex[month] = monthTotal[month] / float64(monthCount[month]) / overall
		}
	}

	// Walk newest first, keeping the last lookbackWeeks observations per weekday
	var sum [7]float64
	var count [7]int
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		wd := r.SaleDate.Weekday()
		if count[wd] >= lookbackWeeks {
			continue
		}
		index := m.monthIndex[r.SaleDate.Month()]
		if index <= 0 {
			index = 1
		}
		sum[wd] += float64(r.SalesQty) / index
		count[wd]++
	}
	for wd := 0; wd < 7; wd++ {
		m.weekdayLevel[wd] = overall
		if count[wd] > 0 {
			m.weekdayLevel[wd] = sum[wd] / float64(count[wd])
		}
	}

	return m
}

func (m model) predict(weekday time.Weekday, month time.Month) float64 {
	value := m.weekdayLevel[weekday] * m.monthIndex[month]
	if value < 0 {
		value = 0
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
