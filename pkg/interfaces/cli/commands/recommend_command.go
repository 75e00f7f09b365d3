package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/application/services"
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/forecast"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/replenish/pkg/interfaces/cli/output"
)

// RecommendConfig holds configuration for an offline recommendation run
type RecommendConfig struct {
	Input         string // Sales history CSV
	Policies      string // Optional policies CSV
	SKU           string // Single SKU; all SKUs when empty
	Days          int    // Forecast days requested
	Today         string // Reference date, YYYY-MM-DD; the day after the latest record when empty
	LookbackWeeks int
	Format        string // text, json, csv or xlsx
	OutputFile    string // Required for xlsx; stdout otherwise
	Help          bool
	Verbose       bool
}

// RecommendCommand computes recommendations from CSV data without a database
type RecommendCommand struct {
	config RecommendConfig
}

func NewRecommendCommand(config RecommendConfig) *RecommendCommand {
	return &RecommendCommand{config: config}
}

// Execute runs the recommend command
func (c *RecommendCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
	}
	if c.config.Input == "" {
		return fmt.Errorf("input file is required")
	}

	started := time.Now()
	loader := csv.NewLoader()
	records, err := loader.LoadSalesRecords(c.config.Input)
	if err != nil {
		return err
	}

	inventory := memory.NewInventoryRepository()
	if err := inventory.LoadSalesRecords(ctx, records); err != nil {
		return err
	}

	policies := memory.NewPolicyRepository()
	if c.config.Policies != "" {
		loaded, err := loader.LoadPolicies(c.config.Policies)
		if err != nil {
			return err
		}
		for sku, policy := range loaded {
			if err := policies.SavePolicy(ctx, sku, policy); err != nil {
				return err
			}
		}
	}

	today, err := c.referenceDate(records)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Printf("📂 Loaded %d sales records from %s\n", len(records), c.config.Input)
		fmt.Printf("📅 Reference date: %s\n", today)
	}

	logger := zap.NewNop()
	if c.config.Verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}

	deps := services.Dependencies{
		Inventory:  inventory,
		Policies:   policies,
		Forecaster: forecast.NewSeasonalForecaster(inventory, c.config.LookbackWeeks, 0),
		Logger:     logger,
		Clock:      services.FixedClock(today.Time),
	}
	svc := services.NewReplenishmentService(deps, 0)

	var results []*dto.ReplenishmentResult
	if c.config.SKU != "" {
		result, err := svc.Recommend(ctx, entities.SKUID(c.config.SKU), c.config.Days)
		if err != nil {
			return err
		}
		results = append(results, result)
	} else {
		results, err = svc.RecommendAll(ctx, c.config.Days)
		if err != nil {
			return err
		}
	}

	return output.Generate(results, output.Config{
		Format:      c.config.Format,
		OutputFile:  c.config.OutputFile,
		Writer:      os.Stdout,
		Verbose:     c.config.Verbose,
		ElapsedTime: time.Since(started),
	})
}

// referenceDate is the configured date or the date of the newest record.
// Current stock is that record's closing level, so forecasting starts the day after it.
func (c *RecommendCommand) referenceDate(records []*entities.SalesRecord) (entities.Date, error) {
	if c.config.Today != "" {
		return entities.ParseDate(c.config.Today)
	}
	var latest entities.Date
	for _, r := range records {
		if r.SaleDate.After(latest.Time) {
			latest = r.SaleDate
		}
	}
	return latest, nil
}

func (c *RecommendCommand) printHelp() {
	fmt.Println(`Offline Replenishment Recommendations

USAGE:
    replenish recommend -input <file> [OPTIONS]

OPTIONS:
    -input <file>      Sales history CSV (required)
    -policies <file>   Replenishment policies CSV; defaults apply otherwise
    -sku <id>          Recommend for one SKU only
    -days <n>          Forecast days requested (default: 30)
    -today <date>      Reference date, YYYY-MM-DD (default: date of latest record)
    -lookback <n>      Weeks of same-weekday history per estimate (default: 8)
    -format <fmt>      Output format: text, json, csv, xlsx (default: text)
    -out <file>        Output file; required for xlsx
    -verbose           Enable verbose output
    -help              Show this help message`)
}
