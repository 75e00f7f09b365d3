package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/vsinha/replenish/pkg/application/services"
	"github.com/vsinha/replenish/pkg/config"
	"github.com/vsinha/replenish/pkg/domain/repositories"
	domain "github.com/vsinha/replenish/pkg/domain/services"
	"github.com/vsinha/replenish/pkg/infrastructure/cache"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
	"github.com/vsinha/replenish/pkg/infrastructure/forecast"
	"github.com/vsinha/replenish/pkg/infrastructure/metrics"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/pebblestore"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/replenish/pkg/interfaces/api"
	"github.com/vsinha/replenish/pkg/interfaces/api/handler"
	"github.com/vsinha/replenish/pkg/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: ./configs/config.yaml)")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting replenishment service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("inventory_store", cfg.Store.Inventory),
		zap.String("policy_store", cfg.Store.Policy),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				zapLogger.Warn("Failed to close resource", zap.Error(err))
			}
		}
	}()

	var db *gorm.DB
	if cfg.Store.Inventory == "postgres" || cfg.Store.Policy == "postgres" {
		db, err = postgres.Open(cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, sqlDB)
		}
	}

	inventory, err := initInventory(ctx, cfg.Store, db)
	if err != nil {
		zapLogger.Fatal("Failed to init inventory store", zap.Error(err))
	}

	policies, closer, err := initPolicies(cfg.Store, db)
	if err != nil {
		zapLogger.Fatal("Failed to init policy store", zap.Error(err))
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	var forecaster domain.Forecaster = forecast.NewSeasonalForecaster(inventory, cfg.Forecast.LookbackWeeks, cfg.Forecast.HistoryDays)
	if cfg.Redis.Enabled {
		rdb := initRedis(cfg.Redis)
		closers = append(closers, rdb)
		forecaster = cache.NewCachedForecaster(forecaster, rdb, cfg.Redis.TTL, reg, zapLogger)
	}

	store := events.NewBoundedEventStore(cfg.Events.Retention, zapLogger)
	audit := events.NewAuditLogger(zapLogger)
	if err := store.Subscribe(audit.Types, audit); err != nil {
		zapLogger.Fatal("Failed to subscribe audit logger", zap.Error(err))
	}
	publishers := []events.Publisher{events.NewStorePublisher(store)}
	if cfg.Kafka.Enabled {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, kafkaPub)
		publishers = append(publishers, kafkaPub)
	}

	deps := services.Dependencies{
		Inventory:  inventory,
		Policies:   policies,
		Forecaster: forecaster,
		Publisher:  events.NewMultiPublisher(publishers...),
		Metrics:    reg,
		Logger:     zapLogger,
	}
	h := handler.NewHandlers(handler.Services{
		Inventory:     services.NewInventoryService(deps),
		Forecast:      services.NewForecastService(deps),
		Replenishment: services.NewReplenishmentService(deps, cfg.Forecast.Concurrency),
		Policy:        services.NewPolicyService(deps),
		Events:        store,
		DefaultDays:   cfg.Forecast.DefaultDays,
	})

	router := api.NewRouter(api.RouterConfig{
		Mode:        cfg.Server.Mode,
		Handlers:    h,
		Metrics:     reg,
		MetricsPath: cfg.Metrics.Path,
		Logger:      zapLogger,
		Build:       api.BuildInfo{Version: Version, BuildTime: BuildTime},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
		return
	}
	zapLogger.Info("Server exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func initInventory(ctx context.Context, cfg config.StoreConfig, db *gorm.DB) (repositories.InventoryRepository, error) {
	if cfg.Inventory == "postgres" {
		return postgres.NewInventoryRepository(db), nil
	}

	repo := memory.NewInventoryRepository()
	if cfg.SeedCSV != "" {
		records, err := csv.NewLoader().LoadSalesRecords(cfg.SeedCSV)
		if err != nil {
			return nil, err
		}
		if err := repo.LoadSalesRecords(ctx, records); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func initPolicies(cfg config.StoreConfig, db *gorm.DB) (repositories.PolicyRepository, io.Closer, error) {
	switch cfg.Policy {
	case "postgres":
		return postgres.NewPolicyRepository(db), nil, nil
	case "pebble":
		repo, err := pebblestore.NewPolicyRepository(cfg.PebbleDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return memory.NewPolicyRepository(), nil, nil
	}
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
