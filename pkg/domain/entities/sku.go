package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SKUID represents a unique stock keeping unit identifier
type SKUID string

// SKU represents a stocked item together with its latest stock snapshot
type SKU struct {
	ID           SKUID  `json:"sku_id"`
	Name         string `json:"sku_name"`
	CurrentStock int    `json:"current_stock"`
	TotalRecords int    `json:"total_records"`
}

// DateLayout is the wire and storage format of calendar dates
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day, always held at midnight UTC
type Date struct {
	time.Time
}

// NewDate creates a Date from its calendar components
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return Date{t}, nil
}

// AddDays returns the date n days after d
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SalesRecord represents one day of sales and purchases for a SKU
type SalesRecord struct {
	SKU         SKUID  `json:"sku_id"`
	SKUName     string `json:"sku_name"`
	SaleDate    Date   `json:"date"`
	SalesQty    int    `json:"sales_qty"`
	PurchaseQty int    `json:"purchase_qty"`
	StockLevel  int    `json:"stock_level"`
}

// NewSalesRecord creates a validated SalesRecord
func NewSalesRecord(sku SKUID, name string, saleDate Date, salesQty, purchaseQty, stockLevel int) (*SalesRecord, error) {
	if sku == "" {
		return nil, NewValidationError("sku_id", "cannot be empty")
	}
	if saleDate.IsZero() {
		return nil, NewValidationError("sale_date", "is required")
	}
	if salesQty < 0 {
		return nil, NewValidationError("sales_qty", "cannot be negative, got %d", salesQty)
	}
	if purchaseQty < 0 {
		return nil, NewValidationError("purchase_qty", "cannot be negative, got %d", purchaseQty)
	}
	if stockLevel < 0 {
		return nil, NewValidationError("stock_level", "cannot be negative, got %d", stockLevel)
	}

	return &SalesRecord{
		SKU:         sku,
		SKUName:     name,
		SaleDate:    saleDate,
		SalesQty:    salesQty,
		PurchaseQty: purchaseQty,
		StockLevel:  stockLevel,
	}, nil
}

// Transaction represents a recorded sale and/or purchase for a SKU on a given day
type Transaction struct {
	SKU         SKUID `json:"sku_id"`
	Date        Date  `json:"transaction_date"`
	SalesQty    int   `json:"sales_qty"`
	PurchaseQty int   `json:"purchase_qty"`
}

// Validate checks the transaction's own fields; stock sufficiency is checked by the store
func (t Transaction) Validate() error {
	if t.SKU == "" {
		return NewValidationError("sku_id", "cannot be empty")
	}
	if t.Date.IsZero() {
		return NewValidationError("transaction_date", "is required")
	}
	if t.SalesQty < 0 {
		return NewValidationError("sales_qty", "cannot be negative, got %d", t.SalesQty)
	}
	if t.PurchaseQty < 0 {
		return NewValidationError("purchase_qty", "cannot be negative, got %d", t.PurchaseQty)
	}
	if t.SalesQty == 0 && t.PurchaseQty == 0 {
		return NewValidationError("sales_qty", "either sales_qty or purchase_qty must be positive")
	}
	return nil
}

// NextStockLevel applies the transaction to the current stock level
func (t Transaction) NextStockLevel(currentStock int) (int, error) {
	next := currentStock - t.SalesQty + t.PurchaseQty
	if next < 0 {
		return 0, NewValidationError(
			"sales_qty",
			"%d units exceed available stock of %d",
			t.SalesQty,
			currentStock+t.PurchaseQty,
		)
	}
	return next, nil
}

// Apply folds the transaction onto the SKU's latest record.
// A transaction on the latest record's day accumulates into it (sameDay is true);
// a later day produces a new record. Earlier days are rejected.
func (t Transaction) Apply(latest SalesRecord) (record SalesRecord, sameDay bool, err error) {
	if t.Date.Before(latest.SaleDate.Time) {
		return SalesRecord{}, false, NewValidationError(
			"transaction_date",
			"%s is before the latest record on %s",
			t.Date,
			latest.SaleDate,
		)
	}

	next, err := t.NextStockLevel(latest.StockLevel)
	if err != nil {
		return SalesRecord{}, false, err
	}

	if t.Date.Equal(latest.SaleDate.Time) {
		record = latest
		record.SalesQty += t.SalesQty
		record.PurchaseQty += t.PurchaseQty
		record.StockLevel = next
		return record, true, nil
	}

	return SalesRecord{
		SKU:         t.SKU,
		SKUName:     latest.SKUName,
		SaleDate:    t.Date,
		SalesQty:    t.SalesQty,
		PurchaseQty: t.PurchaseQty,
		StockLevel:  next,
	}, false, nil
}
