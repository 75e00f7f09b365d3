package events

import (
	"github.com/vsinha/replenish/pkg/domain/entities"
)

const (
	RecommendationIssuedEvent = "replenishment.recommendation.issued"
	TransactionRecordedEvent  = "inventory.transaction.recorded"
	PolicyUpdatedEvent        = "replenishment.policy.updated"
)

type RecommendationIssued struct {
	SKU            entities.SKUID          `json:"sku_id"`
	Recommendation entities.Recommendation `json:"recommendation"`
	PolicyDefault  bool                    `json:"policy_is_default"`
}

type TransactionRecorded struct {
	Transaction entities.Transaction `json:"transaction"`
	Result      entities.SalesRecord `json:"result"`
}

type PolicyUpdated struct {
	SKU      entities.SKUID               `json:"sku_id"`
	Previous entities.PolicySetting       `json:"previous"`
	Current  entities.ReplenishmentPolicy `json:"current"`
}

// NewRecommendationIssued creates the event raised for every computed recommendation
func NewRecommendationIssued(sku entities.SKUID, rec entities.Recommendation, setting entities.PolicySetting) Event {
	return NewEvent(RecommendationIssuedEvent, string(sku), RecommendationIssued{
		SKU:            sku,
		Recommendation: rec,
		PolicyDefault:  setting.IsDefault(),
	})
}

// NewTransactionRecorded creates the event raised after a stock update
func NewTransactionRecorded(tx entities.Transaction, result entities.SalesRecord) Event {
	return NewEvent(TransactionRecordedEvent, string(tx.SKU), TransactionRecorded{
		Transaction: tx,
		Result:      result,
	})
}

// NewPolicyUpdated creates the event raised after a policy write
func NewPolicyUpdated(sku entities.SKUID, previous entities.PolicySetting, current entities.ReplenishmentPolicy) Event {
	return NewEvent(PolicyUpdatedEvent, string(sku), PolicyUpdated{
		SKU:      sku,
		Previous: previous,
		Current:  current,
	})
}
