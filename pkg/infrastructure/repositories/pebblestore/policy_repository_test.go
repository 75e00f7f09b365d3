package pebblestore

import (
	"context"
	"testing"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

func TestPolicyRepository_SaveGetAndReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewPolicyRepository(dir)
	if err != nil {
		t.Fatalf("Failed to open pebble store: %v", err)
	}

	if _, found, err := repo.GetPolicy(ctx, "SKU-001"); err != nil || found {
		t.Fatalf("Expected no policy, got found=%v err=%v", found, err)
	}

	custom := entities.ReplenishmentPolicy{LeadTimeDays: 14, MinOrderQty: 50, ReorderPoint: 100, SafetyStock: 40, TargetStockLevel: 400}
	if err := repo.SavePolicy(ctx, "SKU-001", custom); err != nil {
		t.Fatalf("Failed to save policy: %v", err)
	}
	if err := repo.SavePolicy(ctx, "SKU-002", entities.DefaultPolicy()); err != nil {
		t.Fatalf("Failed to save policy: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Failed to close pebble store: %v", err)
	}

	reopened, err := NewPolicyRepository(dir)
	if err != nil {
		t.Fatalf("Failed to reopen pebble store: %v", err)
	}
	defer reopened.Close()

	policy, found, err := reopened.GetPolicy(ctx, "SKU-001")
	if err != nil {
		t.Fatalf("Failed to get policy: %v", err)
	}
	if !found || policy != custom {
		t.Errorf("Expected %+v after reopen, got %+v (found %v)", custom, policy, found)
	}

	all, err := reopened.ListPolicies(ctx)
	if err != nil {
		t.Fatalf("Failed to list policies: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 policies, got %d", len(all))
	}
	if all["SKU-002"] != entities.DefaultPolicy() {
		t.Errorf("Expected default policy for SKU-002, got %+v", all["SKU-002"])
	}
}

func TestPrefixUpperBound(t *testing.T) {
	if got := string(prefixUpperBound([]byte("policy/"))); got != "policy0" {
		t.Errorf("Expected policy0, got %s", got)
	}
}
