package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/config"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/replenish/pkg/logging"
)

// LoadConfig holds configuration for loading CSV data into Postgres
type LoadConfig struct {
	Input      string // Sales history CSV
	Policies   string // Optional policies CSV
	ConfigFile string // Optional config file; ./configs/config.yaml otherwise
	Help       bool
	Verbose    bool
}

// LoadCommand upserts sales history and policies into the database
type LoadCommand struct {
	config LoadConfig
}

func NewLoadCommand(config LoadConfig) *LoadCommand {
	return &LoadCommand{config: config}
}

// Execute runs the load command
func (c *LoadCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
	}
	if c.config.Input == "" {
		return fmt.Errorf("input file is required")
	}

	cfg, err := loadConfig(c.config.ConfigFile)
	if err != nil {
		return err
	}
	if c.config.Verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	loader := csv.NewLoader()
	records, err := loader.LoadSalesRecords(c.config.Input)
	if err != nil {
		return err
	}

	db, err := postgres.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := postgres.NewInventoryRepository(db).LoadSalesRecords(ctx, records); err != nil {
		return err
	}
	logger.Info("Sales history loaded", zap.String("file", c.config.Input), zap.Int("rows", len(records)))

	if c.config.Policies != "" {
		policies, err := loader.LoadPolicies(c.config.Policies)
		if err != nil {
			return err
		}
		repo := postgres.NewPolicyRepository(db)
		for sku, policy := range policies {
			if err := repo.SavePolicy(ctx, sku, policy); err != nil {
				return err
			}
		}
		logger.Info("Policies loaded", zap.String("file", c.config.Policies), zap.Int("rows", len(policies)))
	}

	fmt.Printf("✅ Loaded %d sales records into %s\n", len(records), cfg.Database.DBName)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func (c *LoadCommand) printHelp() {
	fmt.Println(`Load Sales History into Postgres

USAGE:
    replenish load -input <file> [OPTIONS]

OPTIONS:
    -input <file>     Sales history CSV (required)
    -policies <file>  Replenishment policies CSV
    -config <file>    Config file (default: ./configs/config.yaml)
    -verbose          Enable debug logging
    -help             Show this help message

Database settings come from the config file or DB_HOST, DB_USER and related variables.`)
}
