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

// PolicyRepository stores replenishment policies in the replenishment_settings table
type PolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a Postgres backed policy repository
func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Verify interface compliance
var _ repositories.PolicyRepository = (*PolicyRepository)(nil)

// GetPolicy returns the stored policy for a SKU
func (r *PolicyRepository) GetPolicy(ctx context.Context, sku entities.SKUID) (entities.ReplenishmentPolicy, bool, error) {
	var row settingRow
	err := r.db.WithContext(ctx).Where("sku_id = ?", string(sku)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.ReplenishmentPolicy{}, false, nil
	}
	if err != nil {
		return entities.ReplenishmentPolicy{}, false, fmt.Errorf("failed to read policy for %s: %w", sku, err)
	}
	return row.toEntity(), true, nil
}

// SavePolicy upserts the policy for a SKU
func (r *PolicyRepository) SavePolicy(ctx context.Context, sku entities.SKUID, policy entities.ReplenishmentPolicy) error {
	row := settingRow{
		SKUID:            string(sku),
		LeadTimeDays:     policy.LeadTimeDays,
		MinOrderQty:      policy.MinOrderQty,
		ReorderPoint:     policy.ReorderPoint,
		SafetyStock:      policy.SafetyStock,
		TargetStockLevel: policy.TargetStockLevel,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lead_time_days",
			"min_order_qty",
			"reorder_point",
			"safety_stock",
			"target_stock_level",
			"updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save policy for %s: %w", sku, err)
	}
	return nil
}

// ListPolicies returns every stored policy keyed by SKU
func (r *PolicyRepository) ListPolicies(ctx context.Context) (map[entities.SKUID]entities.ReplenishmentPolicy, error) {
	var rows []settingRow
	if err := r.db.WithContext(ctx).Order("sku_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	policies := make(map[entities.SKUID]entities.ReplenishmentPolicy, len(rows))
	for _, row := range rows {
		policies[entities.SKUID(row.SKUID)] = row.toEntity()
	}
	return policies, nil
}
