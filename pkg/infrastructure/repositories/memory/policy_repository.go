package memory

import (
	"context"
	"sync"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
)

// PolicyRepository provides in-memory replenishment policy storage
type PolicyRepository struct {
	mu       sync.RWMutex
	policies map[entities.SKUID]entities.ReplenishmentPolicy
}

// NewPolicyRepository creates a new in-memory policy repository
func NewPolicyRepository() *PolicyRepository {
	return &PolicyRepository{
		policies: make(map[entities.SKUID]entities.ReplenishmentPolicy),
	}
}

// Verify interface compliance
var _ repositories.PolicyRepository = (*PolicyRepository)(nil)

// GetPolicy returns the stored policy for a SKU
func (r *PolicyRepository) GetPolicy(ctx context.Context, sku entities.SKUID) (entities.ReplenishmentPolicy, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, found := r.policies[sku]
	return policy, found, nil
}

// SavePolicy stores a policy for a SKU, overwriting any previous one
func (r *PolicyRepository) SavePolicy(ctx context.Context, sku entities.SKUID, policy entities.ReplenishmentPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.policies[sku] = policy
	return nil
}

// ListPolicies returns a copy of every stored policy
func (r *PolicyRepository) ListPolicies(ctx context.Context) (map[entities.SKUID]entities.ReplenishmentPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policies := make(map[entities.SKUID]entities.ReplenishmentPolicy, len(r.policies))
	for sku, policy := range r.policies {
		policies[sku] = policy
	}
	return policies, nil
}
