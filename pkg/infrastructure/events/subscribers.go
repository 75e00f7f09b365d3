package events

import (
	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/logging"
)

// NewAuditLogger returns a handler that logs reorders, stock updates and policy changes.
// Recommendations that need no reorder are skipped.
func NewAuditLogger(logger *zap.Logger) *HandlerFunc {
	logger = logging.OrNop(logger)
	return &HandlerFunc{
		Types: []string{RecommendationIssuedEvent, TransactionRecordedEvent, PolicyUpdatedEvent},
		Fn: func(e Event) error {
			switch data := e.Data().(type) {
			case RecommendationIssued:
				if !data.Recommendation.ReorderNeeded {
					return nil
				}
				logger.Info("Reorder recommended",
					zap.String("sku_id", string(data.SKU)),
					zap.Int("order_quantity", data.Recommendation.OrderQuantity),
					zap.String("urgency", data.Recommendation.Urgency.String()),
					zap.Int("version", e.Version()),
				)
			case TransactionRecorded:
				logger.Info("Stock updated",
					zap.String("sku_id", string(data.Transaction.SKU)),
					zap.Int("sales_qty", data.Transaction.SalesQty),
					zap.Int("purchase_qty", data.Transaction.PurchaseQty),
					zap.Int("stock_level", data.Result.StockLevel),
				)
			case PolicyUpdated:
				logger.Info("Replenishment policy updated",
					zap.String("sku_id", string(data.SKU)),
					zap.Bool("was_default", data.Previous.IsDefault()),
					zap.Int("lead_time_days", data.Current.LeadTimeDays),
					zap.Int("target_stock_level", data.Current.TargetStockLevel),
				)
			}
			return nil
		},
	}
}
