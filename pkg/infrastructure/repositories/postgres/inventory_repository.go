package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
)

const loadBatchSize = 500

// InventoryRepository stores sales history in the inventory_sales table
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a Postgres backed inventory repository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// ListSKUs returns every SKU with its latest stock level and record count
func (r *InventoryRepository) ListSKUs(ctx context.Context) ([]entities.SKU, error) {
	var rows []struct {
		SKUID        string `gorm:"column:sku_id"`
		SKUName      string `gorm:"column:sku_name"`
		CurrentStock int    `gorm:"column:current_stock"`
		TotalRecords int    `gorm:"column:total_records"`
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT s.sku_id,
		       MAX(s.sku_name) AS sku_name,
		       COUNT(*) AS total_records,
		       (SELECT l.stock_level FROM inventory_sales l
		         WHERE l.sku_id = s.sku_id
		         ORDER BY l.sale_date DESC LIMIT 1) AS current_stock
		FROM inventory_sales s
		GROUP BY s.sku_id
		ORDER BY s.sku_id
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list skus: %w", err)
	}

	skus := make([]entities.SKU, len(rows))
	for i, row := range rows {
		skus[i] = entities.SKU{
			ID:           entities.SKUID(row.SKUID),
			Name:         row.SKUName,
			CurrentStock: row.CurrentStock,
			TotalRecords: row.TotalRecords,
		}
	}
	return skus, nil
}

// GetCurrentStock returns the stock level of the SKU's latest record
func (r *InventoryRepository) GetCurrentStock(ctx context.Context, sku entities.SKUID) (int, error) {
	latest, err := latestRow(r.db.WithContext(ctx), sku)
	if err != nil {
		return 0, err
	}
	return latest.StockLevel, nil
}

// GetHistory returns at most the last days records for a SKU, oldest first
func (r *InventoryRepository) GetHistory(ctx context.Context, sku entities.SKUID, days int) ([]entities.SalesRecord, error) {
	query := r.db.WithContext(ctx).
		Where("sku_id = ?", string(sku)).
		Order("sale_date DESC")
	if days > 0 {
		query = query.Limit(days)
	}

	var rows []salesRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", sku, err)
	}
	if len(rows) == 0 {
		return nil, entities.NewSKUNotFoundError(sku)
	}

	history := make([]entities.SalesRecord, len(rows))
	for i, row := range rows {
		history[len(rows)-1-i] = row.toEntity()
	}
	return history, nil
}

// RecordTransaction applies a transaction inside a database transaction.
// A per-SKU advisory lock serializes concurrent writers so the latest row read is never stale.
func (r *InventoryRepository) RecordTransaction(ctx context.Context, tx entities.Transaction) (*entities.SalesRecord, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	var result entities.SalesRecord
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", string(tx.SKU)).Error; err != nil {
			return fmt.Errorf("failed to lock %s: %w", tx.SKU, err)
		}

		latest, err := latestRow(db.Clauses(clause.Locking{Strength: "UPDATE"}), tx.SKU)
		if err != nil {
			return err
		}

		record, sameDay, err := tx.Apply(latest.toEntity())
		if err != nil {
			return err
		}

		if sameDay {
			err = db.Model(&salesRow{}).
				Where("id = ?", latest.ID).
				Updates(map[string]any{
					"sales_qty":    record.SalesQty,
					"purchase_qty": record.PurchaseQty,
					"stock_level":  record.StockLevel,
				}).Error
		} else {
			row := newSalesRow(record)
			err = db.Create(&row).Error
		}
		if err != nil {
			return fmt.Errorf("failed to write transaction for %s: %w", tx.SKU, err)
		}

		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// LoadSalesRecords upserts sales records keyed by SKU and date
func (r *InventoryRepository) LoadSalesRecords(ctx context.Context, records []*entities.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]salesRow, len(records))
	for i, record := range records {
		rows[i] = newSalesRow(*record)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku_id"}, {Name: "sale_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"sku_name", "sales_qty", "purchase_qty", "stock_level"}),
	}).CreateInBatches(rows, loadBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to load sales records: %w", err)
	}
	return nil
}

func latestRow(db *gorm.DB, sku entities.SKUID) (salesRow, error) {
	var row salesRow
	err := db.Where("sku_id = ?", string(sku)).Order("sale_date DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salesRow{}, entities.NewSKUNotFoundError(sku)
	}
	if err != nil {
		return salesRow{}, fmt.Errorf("failed to read latest record for %s: %w", sku, err)
	}
	return row, nil
}
