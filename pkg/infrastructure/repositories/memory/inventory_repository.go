package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
)

// InventoryRepository provides in-memory sales history storage
type InventoryRepository struct {
	mu      sync.RWMutex
	records map[entities.SKUID][]entities.SalesRecord

	// skuLocks serializes stock updates per SKU
	skuLocks sync.Map
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		records: make(map[entities.SKUID][]entities.SalesRecord),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadSalesRecords loads sales records into the repository, keeping each SKU ordered by date
func (r *InventoryRepository) LoadSalesRecords(ctx context.Context, records []*entities.SalesRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := make(map[entities.SKUID]bool)
	for _, record := range records {
		r.records[record.SKU] = append(r.records[record.SKU], *record)
		touched[record.SKU] = true
	}
	for sku := range touched {
		history := r.records[sku]
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].SaleDate.Before(history[j].SaleDate.Time)
		})
	}
	return nil
}

// ListSKUs returns every SKU with its latest stock level, ordered by SKU
func (r *InventoryRepository) ListSKUs(ctx context.Context) ([]entities.SKU, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skus := make([]entities.SKU, 0, len(r.records))
	for id, history := range r.records {
		if len(history) == 0 {
			continue
		}
		latest := history[len(history)-1]
		skus = append(skus, entities.SKU{
			ID:           id,
			Name:         latest.SKUName,
			CurrentStock: latest.StockLevel,
			TotalRecords: len(history),
		})
	}
	sort.Slice(skus, func(i, j int) bool {
		return skus[i].ID < skus[j].ID
	})
	return skus, nil
}

// GetCurrentStock returns the stock level of the SKU's latest record
func (r *InventoryRepository) GetCurrentStock(ctx context.Context, sku entities.SKUID) (int, error) {
	latest, err := r.latest(sku)
	if err != nil {
		return 0, err
	}
	return latest.StockLevel, nil
}

// GetHistory returns at most the last days records for a SKU, oldest first
func (r *InventoryRepository) GetHistory(ctx context.Context, sku entities.SKUID, days int) ([]entities.SalesRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history, exists := r.records[sku]
	if !exists || len(history) == 0 {
		return nil, entities.NewSKUNotFoundError(sku)
	}

	start := 0
	if days > 0 && days < len(history) {
		start = len(history) - days
	}
	out := make([]entities.SalesRecord, len(history)-start)
	copy(out, history[start:])
	return out, nil
}

// RecordTransaction applies a transaction to the SKU's latest record
func (r *InventoryRepository) RecordTransaction(ctx context.Context, tx entities.Transaction) (*entities.SalesRecord, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	lock := r.lockFor(tx.SKU)
	lock.Lock()
	defer lock.Unlock()

	latest, err := r.latest(tx.SKU)
	if err != nil {
		return nil, err
	}

	record, sameDay, err := tx.Apply(latest)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	history := r.records[tx.SKU]
	if sameDay {
		history[len(history)-1] = record
	} else {
		r.records[tx.SKU] = append(history, record)
	}
	r.mu.Unlock()

	return &record, nil
}

func (r *InventoryRepository) latest(sku entities.SKUID) (entities.SalesRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history, exists := r.records[sku]
	if !exists || len(history) == 0 {
		return entities.SalesRecord{}, entities.NewSKUNotFoundError(sku)
	}
	return history[len(history)-1], nil
}

func (r *InventoryRepository) lockFor(sku entities.SKUID) *sync.Mutex {
	lock, _ := r.skuLocks.LoadOrStore(sku, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
