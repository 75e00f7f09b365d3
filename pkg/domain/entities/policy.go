package entities

import "encoding/json"

// System defaults applied to SKUs that were never explicitly configured
const (
	DefaultLeadTimeDays     = 7
	DefaultMinOrderQty      = 10
	DefaultReorderPoint     = 50
	DefaultSafetyStock      = 25
	DefaultTargetStockLevel = 150
)

// ReplenishmentPolicy holds the inventory parameters that drive a recommendation
type ReplenishmentPolicy struct {
	LeadTimeDays     int `json:"lead_time_days"`
	MinOrderQty      int `json:"min_order_qty"`
	ReorderPoint     int `json:"reorder_point"`
	SafetyStock      int `json:"safety_stock"`
	TargetStockLevel int `json:"target_stock_level"`
}

// DefaultPolicy returns the system default policy
func DefaultPolicy() ReplenishmentPolicy {
	return ReplenishmentPolicy{
		LeadTimeDays:     DefaultLeadTimeDays,
		MinOrderQty:      DefaultMinOrderQty,
		ReorderPoint:     DefaultReorderPoint,
		SafetyStock:      DefaultSafetyStock,
		TargetStockLevel: DefaultTargetStockLevel,
	}
}

// NewReplenishmentPolicy creates a validated ReplenishmentPolicy
func NewReplenishmentPolicy(leadTimeDays, minOrderQty, reorderPoint, safetyStock, targetStockLevel int) (ReplenishmentPolicy, error) {
	p := ReplenishmentPolicy{
		LeadTimeDays:     leadTimeDays,
		MinOrderQty:      minOrderQty,
		ReorderPoint:     reorderPoint,
		SafetyStock:      safetyStock,
		TargetStockLevel: targetStockLevel,
	}
	if err := p.Validate(); err != nil {
		return ReplenishmentPolicy{}, err
	}
	return p, nil
}

// Validate checks the policy constraints in order and stops at the first violation
func (p ReplenishmentPolicy) Validate() error {
	if p.LeadTimeDays < 1 {
		return NewValidationError("lead_time_days", "must be at least 1, got %d", p.LeadTimeDays)
	}
	if p.MinOrderQty < 1 {
		return NewValidationError("min_order_qty", "must be at least 1, got %d", p.MinOrderQty)
	}
	if p.ReorderPoint < 0 {
		return NewValidationError("reorder_point", "cannot be negative, got %d", p.ReorderPoint)
	}
	if p.SafetyStock < 0 {
		return NewValidationError("safety_stock", "cannot be negative, got %d", p.SafetyStock)
	}
	if p.TargetStockLevel < p.SafetyStock {
		return NewValidationError(
			"target_stock_level",
			"(%d) cannot be less than safety_stock (%d)",
			p.TargetStockLevel,
			p.SafetyStock,
		)
	}
	return nil
}

// PolicySetting is either a DefaultPolicySetting or a CustomPolicySetting
type PolicySetting interface {
	Policy() ReplenishmentPolicy
	IsDefault() bool
	isPolicySetting()
}

// DefaultPolicySetting is the fallback for a SKU that was never configured
type DefaultPolicySetting struct {
	ReplenishmentPolicy
}

// CustomPolicySetting is a policy explicitly stored for a SKU
type CustomPolicySetting struct {
	ReplenishmentPolicy
}

// SettingFor wraps a stored policy, falling back to the defaults when none was found
func SettingFor(policy ReplenishmentPolicy, found bool) PolicySetting {
	if !found {
		return DefaultPolicySetting{ReplenishmentPolicy: DefaultPolicy()}
	}
	return CustomPolicySetting{ReplenishmentPolicy: policy}
}

func (s DefaultPolicySetting) Policy() ReplenishmentPolicy { return s.ReplenishmentPolicy }
func (DefaultPolicySetting) IsDefault() bool                { return true }
func (DefaultPolicySetting) isPolicySetting()               {}

func (s CustomPolicySetting) Policy() ReplenishmentPolicy { return s.ReplenishmentPolicy }
func (CustomPolicySetting) IsDefault() bool                { return false }
func (CustomPolicySetting) isPolicySetting()               {}

// MarshalJSON flattens the policy and tags it as default
func (s DefaultPolicySetting) MarshalJSON() ([]byte, error) {
	return marshalSetting(s.ReplenishmentPolicy, true)
}

// MarshalJSON flattens the policy and tags it as custom
func (s CustomPolicySetting) MarshalJSON() ([]byte, error) {
	return marshalSetting(s.ReplenishmentPolicy, false)
}

func marshalSetting(p ReplenishmentPolicy, isDefault bool) ([]byte, error) {
	return json.Marshal(struct {
		ReplenishmentPolicy
		IsDefault bool `json:"is_default"`
	}{p, isDefault})
}
