package repositories

import (
	"context"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// PolicyRepository provides access to per-SKU replenishment policies
type PolicyRepository interface {
	// GetPolicy reports found=false when no policy was ever stored for the SKU
	GetPolicy(ctx context.Context, sku entities.SKUID) (policy entities.ReplenishmentPolicy, found bool, err error)
	SavePolicy(ctx context.Context, sku entities.SKUID, policy entities.ReplenishmentPolicy) error
	// ListPolicies returns every stored policy keyed by SKU
	ListPolicies(ctx context.Context) (map[entities.SKUID]entities.ReplenishmentPolicy, error)
}
