package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/infrastructure/metrics"
	"github.com/vsinha/replenish/pkg/interfaces/api/handler"
	"github.com/vsinha/replenish/pkg/interfaces/api/middleware"
	"github.com/vsinha/replenish/pkg/logging"
)

// BuildInfo is reported by /version
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
}

// RouterConfig holds everything NewRouter wires together.
// Metrics is optional; /metrics is only served when it is set.
type RouterConfig struct {
	Mode        string
	Handlers    *handler.Handlers
	Metrics     *metrics.Registry
	MetricsPath string
	Logger      *zap.Logger
	Build       BuildInfo
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := logging.OrNop(cfg.Logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(r, cfg)
	return r
}

func registerRoutes(r *gin.Engine, cfg RouterConfig) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Build)
	})

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handler.NotFound(c, "Not found")
			return
		}
		c.Status(http.StatusNotFound)
	})

	h := cfg.Handlers
	v1 := r.Group("/api/v1")
	{
		v1.GET("/replenishment", h.Replenishment.List)
		v1.GET("/replenishment/settings", h.Policy.List)

		skus := v1.Group("/skus")
		{
			skus.GET("", h.SKU.List)
			skus.GET("/:sku_id/history", h.SKU.History)
			skus.GET("/:sku_id/forecast", h.SKU.Forecast)
			skus.POST("/:sku_id/transactions", h.SKU.RecordTransaction)
			skus.GET("/:sku_id/replenishment", h.Replenishment.Get)
			skus.GET("/:sku_id/replenishment/settings", h.Policy.Get)
			skus.PUT("/:sku_id/replenishment/settings", h.Policy.Update)
		}

		if h.Events != nil {
			v1.GET("/events", h.Events.List)
			v1.GET("/skus/:sku_id/events", h.Events.Stream)
		}
	}
}
