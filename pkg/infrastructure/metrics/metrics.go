package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Registry holds the service's Prometheus collectors on a private registry.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	Recommendations       *prometheus.CounterVec
	Reorders              prometheus.Counter
	Transactions          prometheus.Counter
	PolicyUpdates         prometheus.Counter
	ForecastCacheHits     prometheus.Counter
	ForecastCacheMisses   prometheus.Counter
	RecommendationLatency prometheus.Histogram
}

// NewRegistry creates and registers every collector
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	recommendations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replenish_recommendations_total",
		Help: "Recommendations issued, by urgency.",
	}, []string{"urgency"})
	reorders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_reorders_total",
		Help: "Recommendations that called for a reorder.",
	})
	transactions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_transactions_total",
		Help: "Sales and purchase transactions recorded.",
	})
	policyUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_policy_updates_total",
		Help: "Replenishment policies written.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_forecast_cache_hits_total",
		Help: "Forecasts served from the Redis cache.",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_forecast_cache_misses_total",
		Help: "Forecasts computed because the cache had no usable entry.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "replenish_recommendation_latency_seconds",
		Help:    "Time to build one recommendation including forecast and store reads.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(recommendations, reorders, transactions, policyUpdates, cacheHits, cacheMisses, latency)
	return &Registry{
		reg:                   r,
		Recommendations:       recommendations,
		Reorders:              reorders,
		Transactions:          transactions,
		PolicyUpdates:         policyUpdates,
		ForecastCacheHits:     cacheHits,
		ForecastCacheMisses:   cacheMisses,
		RecommendationLatency: latency,
	}
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveRecommendation records one issued recommendation
func (r *Registry) ObserveRecommendation(rec entities.Recommendation, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Recommendations.WithLabelValues(rec.Urgency.String()).Inc()
	if rec.ReorderNeeded {
		r.Reorders.Inc()
	}
	r.RecommendationLatency.Observe(elapsed.Seconds())
}

// ObserveTransaction records one applied transaction
func (r *Registry) ObserveTransaction() {
	if r == nil {
		return
	}
	r.Transactions.Inc()
}

// ObservePolicyUpdate records one policy write
func (r *Registry) ObservePolicyUpdate() {
	if r == nil {
		return
	}
	r.PolicyUpdates.Inc()
}

// ObserveCache records a forecast cache lookup
func (r *Registry) ObserveCache(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.ForecastCacheHits.Inc()
	} else {
		r.ForecastCacheMisses.Inc()
	}
}
