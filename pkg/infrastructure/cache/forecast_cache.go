package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/services"
	"github.com/vsinha/replenish/pkg/infrastructure/metrics"
	"github.com/vsinha/replenish/pkg/logging"
)

// CachedForecaster memoizes forecasts in Redis. Cache failures are logged and bypassed.
type CachedForecaster struct {
	next    services.Forecaster
	client  redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewCachedForecaster wraps next with a Redis cache
func NewCachedForecaster(next services.Forecaster, client redis.Cmdable, ttl time.Duration, reg *metrics.Registry, logger *zap.Logger) *CachedForecaster {
	return &CachedForecaster{
		next:    next,
		client:  client,
		ttl:     ttl,
		metrics: reg,
		logger:  logging.OrNop(logger),
	}
}

// Verify interface compliance
var _ services.Forecaster = (*CachedForecaster)(nil)

// Forecast returns a cached forecast for the SKU, day and horizon, computing it on a miss
func (c *CachedForecaster) Forecast(ctx context.Context, sku entities.SKUID, horizonDays int, today time.Time) ([]float64, error) {
	key := Key(sku, entities.DateOf(today), horizonDays)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []float64
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached) == horizonDays {
			c.metrics.ObserveCache(true)
			return cached, nil
		}
		c.logger.Warn("Discarding malformed cached forecast", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Forecast cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.metrics.ObserveCache(false)

	forecast, err := c.next.Forecast(ctx, sku, horizonDays, today)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(forecast)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("Forecast cache write failed", zap.String("key", key), zap.Error(err))
	}

	return forecast, nil
}

// Invalidate drops every cached forecast for a SKU
func (c *CachedForecaster) Invalidate(ctx context.Context, sku entities.SKUID) error {
	pattern := fmt.Sprintf("forecast:%s:*", sku)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cached forecasts for %s: %w", sku, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached forecasts for %s: %w", sku, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Key returns the cache key for a forecast
func Key(sku entities.SKUID, day entities.Date, horizonDays int) string {
	return fmt.Sprintf("forecast:%s:%s:%d", sku, day, horizonDays)
}
