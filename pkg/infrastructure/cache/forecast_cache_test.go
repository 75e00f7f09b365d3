package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/metrics"
)

type countingForecaster struct {
	calls int
}

func (f *countingForecaster) Forecast(ctx context.Context, sku entities.SKUID, horizonDays int, today time.Time) ([]float64, error) {
	f.calls++
	out := make([]float64, horizonDays)
	for i := range out {
		out[i] = float64(i) + 0.5
	}
	return out, nil
}

var cacheToday = time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)

func TestKey(t *testing.T) {
	got := Key("SKU-001", entities.DateOf(cacheToday), 14)
	if got != "forecast:SKU-001:2025-04-02:14" {
		t.Errorf("Expected forecast:SKU-001:2025-04-02:14, got %s", got)
	}
}

func TestCachedForecaster_BypassesUnavailableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	next := &countingForecaster{}
	reg := metrics.NewRegistry()
	cached := NewCachedForecaster(next, client, time.Minute, reg, nil)

	forecast, err := cached.Forecast(context.Background(), "SKU-001", 3, cacheToday)
	if err != nil {
		t.Fatalf("Expected forecast despite cache failure, got %v", err)
	}
	if len(forecast) != 3 || forecast[2] != 2.5 {
		t.Errorf("Expected [0.5 1.5 2.5], got %v", forecast)
	}
	if next.calls != 1 {
		t.Errorf("Expected 1 underlying call, got %d", next.calls)
	}
	if got := testutil.ToFloat64(reg.ForecastCacheMisses); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
}

func TestCachedForecaster_Redis(t *testing.T) {
	addr := os.Getenv("REPLENISH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REPLENISH_TEST_REDIS_ADDR not set; skipping Redis tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()

	next := &countingForecaster{}
	reg := metrics.NewRegistry()
	cached := NewCachedForecaster(next, client, time.Minute, reg, nil)
	if err := cached.Invalidate(ctx, "SKU-CACHE"); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := cached.Forecast(ctx, "SKU-CACHE", 7, cacheToday); err != nil {
			t.Fatalf("Failed to forecast: %v", err)
		}
	}
	if next.calls != 1 {
		t.Errorf("Expected 1 underlying call, got %d", next.calls)
	}
	if got := testutil.ToFloat64(reg.ForecastCacheHits); got != 2 {
		t.Errorf("Expected 2 cache hits, got %v", got)
	}

	if err := cached.Invalidate(ctx, "SKU-CACHE"); err != nil {
		t.Fatalf("Failed to invalidate: %v", err)
	}
	if _, err := cached.Forecast(ctx, "SKU-CACHE", 7, cacheToday); err != nil {
		t.Fatalf("Failed to forecast: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("Expected recompute after invalidation, got %d calls", next.calls)
	}
}
