package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
)

// PolicyService reads and writes per-SKU replenishment policies
type PolicyService struct {
	deps Dependencies
}

func NewPolicyService(deps Dependencies) *PolicyService {
	return &PolicyService{deps: deps.withDefaults()}
}

// Get returns the SKU's custom policy or the system default
func (s *PolicyService) Get(ctx context.Context, sku entities.SKUID) (entities.PolicySetting, error) {
	return loadSetting(ctx, s.deps.Policies, sku)
}

// List returns the effective policy of every known SKU
func (s *PolicyService) List(ctx context.Context) ([]dto.SKUPolicy, error) {
	skus, err := s.deps.Inventory.ListSKUs(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.deps.Policies.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]dto.SKUPolicy, len(skus))
	for i, sku := range skus {
		policy, found := stored[sku.ID]
		list[i] = dto.SKUPolicy{SKU: sku.ID, Policy: entities.SettingFor(policy, found)}
	}
	return list, nil
}

// Set validates and stores a custom policy for a known SKU
func (s *PolicyService) Set(ctx context.Context, sku entities.SKUID, policy entities.ReplenishmentPolicy) (entities.PolicySetting, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.deps.Inventory.GetCurrentStock(ctx, sku); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.NewValidationError("sku_id", "unknown SKU %s", sku)
		}
		return nil, err
	}

	previous, err := loadSetting(ctx, s.deps.Policies, sku)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Policies.SavePolicy(ctx, sku, policy); err != nil {
		return nil, err
	}
	s.deps.Metrics.ObservePolicyUpdate()

	if err := s.deps.Publisher.Publish(ctx, events.NewPolicyUpdated(sku, previous, policy)); err != nil {
		s.deps.Logger.Warn("Failed to publish policy event", zap.String("sku_id", string(sku)), zap.Error(err))
	}

	s.deps.Logger.Info("Replenishment policy updated",
		zap.String("sku_id", string(sku)),
		zap.Int("lead_time_days", policy.LeadTimeDays),
		zap.Int("reorder_point", policy.ReorderPoint),
	)

	return entities.CustomPolicySetting{ReplenishmentPolicy: policy}, nil
}
