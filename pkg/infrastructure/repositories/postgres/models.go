package postgres

import (
	"time"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// salesRow is one day of history in inventory_sales
type salesRow struct {
	ID          uint      `gorm:"primaryKey"`
	SKUID       string    `gorm:"column:sku_id;size:64;not null;uniqueIndex:idx_inventory_sales_sku_date,priority:1"`
	SKUName     string    `gorm:"column:sku_name;size:255;not null"`
	SaleDate    time.Time `gorm:"column:sale_date;type:date;not null;uniqueIndex:idx_inventory_sales_sku_date,priority:2"`
	SalesQty    int       `gorm:"column:sales_qty;not null;default:0"`
	PurchaseQty int       `gorm:"column:purchase_qty;not null;default:0"`
	StockLevel  int       `gorm:"column:stock_level;not null"`
}

func (salesRow) TableName() string {
	return "inventory_sales"
}

func newSalesRow(r entities.SalesRecord) salesRow {
	return salesRow{
		SKUID:       string(r.SKU),
		SKUName:     r.SKUName,
		SaleDate:    r.SaleDate.Time,
		SalesQty:    r.SalesQty,
		PurchaseQty: r.PurchaseQty,
		StockLevel:  r.StockLevel,
	}
}

func (r salesRow) toEntity() entities.SalesRecord {
	return entities.SalesRecord{
		SKU:         entities.SKUID(r.SKUID),
		SKUName:     r.SKUName,
		SaleDate:    entities.DateOf(r.SaleDate),
		SalesQty:    r.SalesQty,
		PurchaseQty: r.PurchaseQty,
		StockLevel:  r.StockLevel,
	}
}

// settingRow is an explicitly configured policy in replenishment_settings
type settingRow struct {
	SKUID            string `gorm:"column:sku_id;primaryKey;size:64"`
	LeadTimeDays     int    `gorm:"column:lead_time_days;not null"`
	MinOrderQty      int    `gorm:"column:min_order_qty;not null"`
	ReorderPoint     int    `gorm:"column:reorder_point;not null"`
	SafetyStock      int    `gorm:"column:safety_stock;not null"`
	TargetStockLevel int    `gorm:"column:target_stock_level;not null"`
	UpdatedAt        time.Time
}

func (settingRow) TableName() string {
	return "replenishment_settings"
}

func (r settingRow) toEntity() entities.ReplenishmentPolicy {
	return entities.ReplenishmentPolicy{
		LeadTimeDays:     r.LeadTimeDays,
		MinOrderQty:      r.MinOrderQty,
		ReorderPoint:     r.ReorderPoint,
		SafetyStock:      r.SafetyStock,
		TargetStockLevel: r.TargetStockLevel,
	}
}
