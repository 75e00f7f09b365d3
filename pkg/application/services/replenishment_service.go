package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
	"github.com/vsinha/replenish/pkg/domain/services"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
	"github.com/vsinha/replenish/pkg/infrastructure/metrics"
	"github.com/vsinha/replenish/pkg/logging"
)

const (
	DefaultRecommendDays = 30
	MaxRecommendDays     = 365
	defaultConcurrency   = 8
)

// Dependencies groups the collaborators shared by the application services.
// Publisher, Metrics, Logger and Clock are optional.
type Dependencies struct {
	Inventory  repositories.InventoryRepository
	Policies   repositories.PolicyRepository
	Forecaster services.Forecaster
	Publisher  events.Publisher
	Metrics    *metrics.Registry
	Logger     *zap.Logger
	Clock      Clock
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	d.Logger = logging.OrNop(d.Logger)
	return d
}

// ReplenishmentService produces order recommendations from stock, policy and forecast
type ReplenishmentService struct {
	deps        Dependencies
	engine      *services.ReplenishmentEngine
	concurrency int
}

// NewReplenishmentService creates a replenishment service; concurrency bounds RecommendAll
func NewReplenishmentService(deps Dependencies, concurrency int) *ReplenishmentService {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &ReplenishmentService{
		deps:        deps.withDefaults(),
		engine:      services.NewReplenishmentEngine(),
		concurrency: concurrency,
	}
}

// Recommend computes the recommendation for one SKU using a forecast of at least days days
func (s *ReplenishmentService) Recommend(ctx context.Context, sku entities.SKUID, days int) (*dto.ReplenishmentResult, error) {
	if err := validateDays(days, MaxRecommendDays); err != nil {
		return nil, err
	}

	started := time.Now()
	today := s.deps.Clock()

	stock, err := s.deps.Inventory.GetCurrentStock(ctx, sku)
	if err != nil {
		return nil, err
	}

	setting, err := loadSetting(ctx, s.deps.Policies, sku)
	if err != nil {
		return nil, err
	}
	policy := setting.Policy()

	horizon := services.ForecastHorizon(days, policy)
	demands, err := s.deps.Forecaster.Forecast(ctx, sku, horizon, today)
	if err != nil {
		return nil, fmt.Errorf("failed to forecast %s: %w", sku, err)
	}

	var short *entities.InsufficientDataError
	if err := services.CheckForecastCoverage(policy, len(demands)); errors.As(err, &short) {
		s.deps.Logger.Warn("Forecast shorter than critical window",
			zap.String("sku_id", string(sku)),
			zap.Int("required", short.Required),
			zap.Int("available", short.Available),
		)
	}

	rec := s.engine.CalculateRecommendation(stock, demands, policy, today)
	s.deps.Metrics.ObserveRecommendation(rec, time.Since(started))

	if err := s.deps.Publisher.Publish(ctx, events.NewRecommendationIssued(sku, rec, setting)); err != nil {
		s.deps.Logger.Warn("Failed to publish recommendation event", zap.String("sku_id", string(sku)), zap.Error(err))
	}

	s.deps.Logger.Debug("Recommendation computed",
		zap.String("sku_id", string(sku)),
		zap.Bool("reorder_needed", rec.ReorderNeeded),
		zap.Int("order_quantity", rec.OrderQuantity),
		zap.Stringer("urgency", rec.Urgency),
	)

	return &dto.ReplenishmentResult{
		SKU:            sku,
		Policy:         setting,
		Forecast:       entities.NewForecastSeries(entities.DateOf(today), demands),
		Recommendation: rec,
	}, nil
}

// RecommendAll computes recommendations for every SKU, most urgent first then by SKU
func (s *ReplenishmentService) RecommendAll(ctx context.Context, days int) ([]*dto.ReplenishmentResult, error) {
	if err := validateDays(days, MaxRecommendDays); err != nil {
		return nil, err
	}

	skus, err := s.deps.Inventory.ListSKUs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.ReplenishmentResult, len(skus))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sku := range skus {
		i, sku := i, sku
		g.Go(func() error {
			result, err := s.Recommend(gctx, sku.ID, days)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByUrgency(results)
	return results, nil
}

// SortByUrgency orders results by descending urgency, breaking ties by SKU
func SortByUrgency(results []*dto.ReplenishmentResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ui, uj := results[i].Recommendation.Urgency, results[j].Recommendation.Urgency
		if ui != uj {
			return ui > uj
		}
		return results[i].SKU < results[j].SKU
	})
}

func loadSetting(ctx context.Context, repo repositories.PolicyRepository, sku entities.SKUID) (entities.PolicySetting, error) {
	policy, found, err := repo.GetPolicy(ctx, sku)
	if err != nil {
		return nil, err
	}
	return entities.SettingFor(policy, found), nil
}

func validateDays(days, max int) error {
	if days < 1 || days > max {
		return entities.NewValidationError("days", "must be between 1 and %d, got %d", max, days)
	}
	return nil
}
