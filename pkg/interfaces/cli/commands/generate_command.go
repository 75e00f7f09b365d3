package commands

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for synthetic sales history generation
type GenerateConfig struct {
	Output  string // Output CSV path
	Days    int    // Days of history per SKU
	Start   string // First sale date, YYYY-MM-DD
	Seed    int64  // Random seed for reproducible generation
	Help    bool   // Show help
	Verbose bool   // Verbose output
}

// SKUProfile shapes the synthetic demand of one SKU
type SKUProfile struct {
	ID            entities.SKUID
	Name          string
	Base          float64 // Mean weekday demand
	WeekendFactor float64 // Multiplier applied on Saturday and Sunday
	Trend         float64 // Growth per 30 days
}

// DefaultProfiles are the five SKUs of the standard data set
var DefaultProfiles = []SKUProfile{
	{ID: "SKU-001", Name: "Widget Alpha", Base: 30, WeekendFactor: 0.6, Trend: 0.005},
	{ID: "SKU-002", Name: "Widget Beta", Base: 50, WeekendFactor: 0.8, Trend: -0.002},
	{ID: "SKU-003", Name: "Gadget Pro", Base: 20, WeekendFactor: 1.3, Trend: 0.01},
	{ID: "SKU-004", Name: "Gadget Lite", Base: 40, WeekendFactor: 0.7, Trend: 0.0},
	{ID: "SKU-005", Name: "Accessory Plus", Base: 15, WeekendFactor: 0.9, Trend: 0.008},
}

// monthSeasonality scales demand by calendar month
var monthSeasonality = map[time.Month]float64{
	time.January: 0.80, time.February: 0.75, time.March: 0.85, time.April: 0.90,
	time.May: 0.95, time.June: 1.00, time.July: 1.00, time.August: 0.95,
	time.September: 1.00, time.October: 1.05, time.November: 1.20, time.December: 1.30,
}

const (
	openingStock     = 500
	restockThreshold = 200
	restockMin       = 300
	restockMax       = 600 // exclusive
	noiseFraction    = 0.15
)

// GenerateCommand writes synthetic daily sales history
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}

	if cmd.config.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", cmd.config.Days)
	}
	start, err := entities.ParseDate(cmd.config.Start)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Printf("🔧 Generating %d days of history for %d SKUs from %s\n", cmd.config.Days, len(DefaultProfiles), start)
		fmt.Printf("🎲 Random seed: %d\n", cmd.config.Seed)
	}

	records := cmd.Generate(DefaultProfiles, start, cmd.config.Days)

	if dir := filepath.Dir(cmd.config.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(cmd.config.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cmd.config.Output, err)
	}
	defer file.Close()

	if err := csv.WriteSalesRecords(file, records); err != nil {
		return err
	}

	fmt.Printf("✅ Generated %d rows for %d SKUs over %d days in %s\n", len(records), len(DefaultProfiles), cmd.config.Days, cmd.config.Output)
	return nil
}

// Generate simulates days of sales for each profile, restocking whenever stock drops below the threshold
func (cmd *GenerateCommand) Generate(profiles []SKUProfile, start entities.Date, days int) []*entities.SalesRecord {
	records := make([]*entities.SalesRecord, 0, len(profiles)*days)

	for _, p := range profiles {
		stock := openingStock
		for i := 0; i < days; i++ {
			day := start.AddDays(i)

			demand := p.Base
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				demand *= p.WeekendFactor
			}
			demand *= monthSeasonality[day.Month()]
			demand *= 1 + p.Trend*(float64(i)/30)

			sales := int(math.Round(demand + cmd.rand.NormFloat64()*demand*noiseFraction))
			if sales < 1 {
				sales = 1
			}

			purchase := 0
			if stock < restockThreshold {
				purchase = restockMin + cmd.rand.Intn(restockMax-restockMin)
			}

			stock -= sales - purchase
			if stock < 0 {
				stock = 0
			}

			records = append(records, &entities.SalesRecord{
				SKU:         p.ID,
				SKUName:     p.Name,
				SaleDate:    day,
				SalesQty:    sales,
				PurchaseQty: purchase,
				StockLevel:  stock,
			})
		}
	}

	return records
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Println(`Synthetic Sales History Generator

USAGE:
    replenish generate [OPTIONS]

OPTIONS:
    -output <file>   Output CSV path (default: data/inventory_sales.csv)
    -days <n>        Days of history per SKU (default: 730)
    -start <date>    First sale date, YYYY-MM-DD (default: 2023-01-01)
    -seed <n>        Random seed, 0 for time based (default: 42)
    -verbose         Enable verbose output
    -help            Show this help message`)
}
