package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 730
)

// forecastInvalidator is implemented by forecasters that cache results
type forecastInvalidator interface {
	Invalidate(ctx context.Context, sku entities.SKUID) error
}

// InventoryService exposes SKU listings, sales history and stock updates
type InventoryService struct {
	deps Dependencies
}

func NewInventoryService(deps Dependencies) *InventoryService {
	return &InventoryService{deps: deps.withDefaults()}
}

func (s *InventoryService) ListSKUs(ctx context.Context) ([]entities.SKU, error) {
	return s.deps.Inventory.ListSKUs(ctx)
}

// History returns the last days days of sales for a SKU
func (s *InventoryService) History(ctx context.Context, sku entities.SKUID, days int) (*dto.HistoryResult, error) {
	if err := validateDays(days, MaxHistoryDays); err != nil {
		return nil, err
	}

	records, err := s.deps.Inventory.GetHistory(ctx, sku, days)
	if err != nil {
		return nil, err
	}

	return &dto.HistoryResult{SKU: sku, Days: days, Records: records}, nil
}

// RecordTransaction applies sales and purchases to a SKU's stock
func (s *InventoryService) RecordTransaction(ctx context.Context, tx entities.Transaction) (*entities.SalesRecord, error) {
	if tx.Date.IsZero() {
		tx.Date = entities.DateOf(s.deps.Clock())
	}

	record, err := s.deps.Inventory.RecordTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.ObserveTransaction()

	if inv, ok := s.deps.Forecaster.(forecastInvalidator); ok {
		if err := inv.Invalidate(ctx, tx.SKU); err != nil {
			s.deps.Logger.Warn("Failed to invalidate cached forecasts", zap.String("sku_id", string(tx.SKU)), zap.Error(err))
		}
	}

	if err := s.deps.Publisher.Publish(ctx, events.NewTransactionRecorded(tx, *record)); err != nil {
		s.deps.Logger.Warn("Failed to publish transaction event", zap.String("sku_id", string(tx.SKU)), zap.Error(err))
	}

	s.deps.Logger.Info("Transaction recorded",
		zap.String("sku_id", string(tx.SKU)),
		zap.Stringer("date", tx.Date),
		zap.Int("sales_qty", tx.SalesQty),
		zap.Int("purchase_qty", tx.PurchaseQty),
		zap.Int("stock_level", record.StockLevel),
	)

	return record, nil
}
