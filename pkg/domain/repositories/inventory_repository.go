package repositories

import (
	"context"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// InventoryRepository provides access to stock levels and daily sales history
type InventoryRepository interface {
	ListSKUs(ctx context.Context) ([]entities.SKU, error)
	// GetCurrentStock returns the stock level of the SKU's latest record, or a NotFoundError
	GetCurrentStock(ctx context.Context, sku entities.SKUID) (int, error)
	// GetHistory returns at most the last days records, oldest first
	GetHistory(ctx context.Context, sku entities.SKUID, days int) ([]entities.SalesRecord, error)
	// RecordTransaction applies a sale and/or purchase and returns the resulting record.
	// Writes for the same SKU are serialized; a transaction on an existing day accumulates into it.
	RecordTransaction(ctx context.Context, tx entities.Transaction) (*entities.SalesRecord, error)
	LoadSalesRecords(ctx context.Context, records []*entities.SalesRecord) error
}
