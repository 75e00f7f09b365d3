package pebblestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
)

const policyPrefix = "policy/"

// PolicyRepository stores replenishment policies in an embedded Pebble database
type PolicyRepository struct {
	db *pebble.DB
}

// NewPolicyRepository opens or creates the Pebble database in dir
func NewPolicyRepository(dir string) (*PolicyRepository, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PolicyRepository{db: db}, nil
}

// Verify interface compliance
var _ repositories.PolicyRepository = (*PolicyRepository)(nil)

// Close flushes and closes the database
func (r *PolicyRepository) Close() error {
	return r.db.Close()
}

// GetPolicy returns the stored policy for a SKU
func (r *PolicyRepository) GetPolicy(ctx context.Context, sku entities.SKUID) (entities.ReplenishmentPolicy, bool, error) {
	value, closer, err := r.db.Get(policyKey(sku))
	if errors.Is(err, pebble.ErrNotFound) {
		return entities.ReplenishmentPolicy{}, false, nil
	}
	if err != nil {
		return entities.ReplenishmentPolicy{}, false, fmt.Errorf("failed to read policy for %s: %w", sku, err)
	}
	defer closer.Close()

	policy, err := decodePolicy(value)
	if err != nil {
		return entities.ReplenishmentPolicy{}, false, fmt.Errorf("corrupt policy for %s: %w", sku, err)
	}
	return policy, true, nil
}

// SavePolicy stores the policy for a SKU; writes are synced to the WAL
func (r *PolicyRepository) SavePolicy(ctx context.Context, sku entities.SKUID, policy entities.ReplenishmentPolicy) error {
	value, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to encode policy for %s: %w", sku, err)
	}
	if err := r.db.Set(policyKey(sku), value, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save policy for %s: %w", sku, err)
	}
	return nil
}

// ListPolicies returns every stored policy keyed by SKU
func (r *PolicyRepository) ListPolicies(ctx context.Context) (map[entities.SKUID]entities.ReplenishmentPolicy, error) {
	it, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(policyPrefix),
		UpperBound: prefixUpperBound([]byte(policyPrefix)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer it.Close()

	policies := make(map[entities.SKUID]entities.ReplenishmentPolicy)
	for it.First(); it.Valid(); it.Next() {
		sku := entities.SKUID(it.Key()[len(policyPrefix):])
		policy, err := decodePolicy(it.Value())
		if err != nil {
			return nil, fmt.Errorf("corrupt policy for %s: %w", sku, err)
		}
		policies[sku] = policy
	}
	return policies, it.Error()
}

func policyKey(sku entities.SKUID) []byte {
	return []byte(policyPrefix + string(sku))
}

func decodePolicy(value []byte) (entities.ReplenishmentPolicy, error) {
	var policy entities.ReplenishmentPolicy
	if err := json.Unmarshal(value, &policy); err != nil {
		return entities.ReplenishmentPolicy{}, err
	}
	return policy, nil
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
