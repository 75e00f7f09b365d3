package postgres

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"

	"github.com/vsinha/replenish/pkg/config"
	"github.com/vsinha/replenish/pkg/logging"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewGormLogger routes GORM's query log through zap: failed queries at error,
// slow queries at warn. Record-not-found is expected and not logged.
func NewGormLogger(log *zap.Logger) logger.Interface {
	l := zapgorm2.New(logging.OrNop(log).Named("gorm"))
	l.SlowThreshold = slowQueryThreshold
	l.IgnoreRecordNotFoundError = true
	return l.LogMode(logger.Warn)
}

// Open connects to Postgres and configures the connection pool
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	log = logging.OrNop(log)
	gormConfig := &gorm.Config{
		Logger: NewGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info("Database schema migrated",
			zap.String("host", cfg.Host),
			zap.String("dbname", cfg.DBName),
		)
	}

	return db, nil
}

// Migrate creates or updates the inventory_sales and replenishment_settings tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&salesRow{}, &settingRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
