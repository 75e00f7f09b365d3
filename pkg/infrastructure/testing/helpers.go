package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/services"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
)

// FixtureToday is the reference date of the standard fixture; the latest sales record falls on it
var FixtureToday = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// FixtureSKU describes one SKU seeded by BuildStoreFixture
type FixtureSKU struct {
	ID    entities.SKUID
	Name  string
	Stock int
	Daily int
}

// StandardSKUs mirror the scenarios used across the service and HTTP tests.
// With the default policy and a constant forecast of Daily units:
// SKU-001 needs no order, SKU-002 is CRITICAL and SKU-003 is HIGH.
var StandardSKUs = []FixtureSKU{
	{ID: "SKU-001", Name: "Widget Alpha", Stock: 500, Daily: 10},
	{ID: "SKU-002", Name: "Widget Beta", Stock: 30, Daily: 5},
	{ID: "SKU-003", Name: "Widget Gamma", Stock: 150, Daily: 8},
}

// BuildStoreFixture builds in-memory stores holding 14 days of flat history for StandardSKUs
func BuildStoreFixture() (*memory.InventoryRepository, *memory.PolicyRepository) {
	inventory := memory.NewInventoryRepository()
	policies := memory.NewPolicyRepository()

	today := entities.DateOf(FixtureToday)
	var records []*entities.SalesRecord
	for _, sku := range StandardSKUs {
		for day := 13; day >= 0; day-- {
			stock := sku.Stock + day*sku.Daily
			record, err := entities.NewSalesRecord(sku.ID, sku.Name, today.AddDays(-day), sku.Daily, 0, stock)
			if err != nil {
				panic(err)
			}
			records = append(records, record)
		}
	}

	if err := inventory.LoadSalesRecords(context.Background(), records); err != nil {
		panic(err)
	}
	return inventory, policies
}

// StaticForecaster returns a constant daily demand per SKU
type StaticForecaster struct {
	Daily map[entities.SKUID]float64
	Err   error
}

// NewStaticForecaster forecasts each StandardSKU at its Daily rate
func NewStaticForecaster() *StaticForecaster {
	daily := make(map[entities.SKUID]float64, len(StandardSKUs))
	for _, sku := range StandardSKUs {
		daily[sku.ID] = float64(sku.Daily)
	}
	return &StaticForecaster{Daily: daily}
}

var _ services.Forecaster = (*StaticForecaster)(nil)

func (f *StaticForecaster) Forecast(ctx context.Context, sku entities.SKUID, horizonDays int, today time.Time) ([]float64, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	daily, ok := f.Daily[sku]
	if !ok {
		return nil, entities.NewSKUNotFoundError(sku)
	}
	if horizonDays < 1 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizonDays)
	}
	out := make([]float64, horizonDays)
	for i := range out {
		out[i] = daily
	}
	return out, nil
}
