package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/vsinha/replenish/pkg/config"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// openTestDB connects using REPLENISH_TEST_DB_HOST and friends, skipping when unset
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	host := os.Getenv("REPLENISH_TEST_DB_HOST")
	if host == "" {
		t.Skip("REPLENISH_TEST_DB_HOST not set; skipping Postgres tests")
	}

	cfg := config.DatabaseConfig{
		Host:         host,
		Port:         5432,
		User:         config.GetEnvOrDefault("REPLENISH_TEST_DB_USER", "postgres"),
		Password:     config.GetEnvOrDefault("REPLENISH_TEST_DB_PASSWORD", "postgres"),
		DBName:       config.GetEnvOrDefault("REPLENISH_TEST_DB_NAME", "inventory_test"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 1,
		AutoMigrate:  true,
	}

	db, err := Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Exec("TRUNCATE inventory_sales, replenishment_settings").Error; err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	return db
}

func TestInventoryRepository_Postgres(t *testing.T) {
	db := openTestDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	start := entities.NewDate(2025, time.January, 1)
	records := []*entities.SalesRecord{
		{SKU: "SKU-001", SKUName: "Widget Alpha", SaleDate: start, SalesQty: 10, StockLevel: 490},
		{SKU: "SKU-001", SKUName: "Widget Alpha", SaleDate: start.AddDays(1), SalesQty: 10, StockLevel: 480},
	}
	if err := repo.LoadSalesRecords(ctx, records); err != nil {
		t.Fatalf("Failed to load sales records: %v", err)
	}

	skus, err := repo.ListSKUs(ctx)
	if err != nil {
		t.Fatalf("Failed to list SKUs: %v", err)
	}
	if len(skus) != 1 || skus[0].CurrentStock != 480 || skus[0].TotalRecords != 2 {
		t.Errorf("Expected SKU-001 with stock 480 and 2 records, got %+v", skus)
	}

	record, err := repo.RecordTransaction(ctx, entities.Transaction{
		SKU:         "SKU-001",
		Date:        start.AddDays(1),
		SalesQty:    30,
		PurchaseQty: 50,
	})
	if err != nil {
		t.Fatalf("Failed to record transaction: %v", err)
	}
	if record.StockLevel != 500 || record.SalesQty != 40 {
		t.Errorf("Expected stock 500 with 40 sold, got %d and %d", record.StockLevel, record.SalesQty)
	}

	history, err := repo.GetHistory(ctx, "SKU-001", 30)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 2 || history[0].SaleDate.String() != "2025-01-01" {
		t.Errorf("Expected 2 records oldest first, got %+v", history)
	}

	if _, err := repo.GetCurrentStock(ctx, "SKU-404"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestPolicyRepository_Postgres(t *testing.T) {
	db := openTestDB(t)
	repo := NewPolicyRepository(db)
	ctx := context.Background()

	if _, found, err := repo.GetPolicy(ctx, "SKU-001"); err != nil || found {
		t.Fatalf("Expected no policy, got found=%v err=%v", found, err)
	}

	custom := entities.ReplenishmentPolicy{LeadTimeDays: 10, MinOrderQty: 20, ReorderPoint: 80, SafetyStock: 30, TargetStockLevel: 300}
	if err := repo.SavePolicy(ctx, "SKU-001", custom); err != nil {
		t.Fatalf("Failed to save policy: %v", err)
	}
	custom.TargetStockLevel = 350
	if err := repo.SavePolicy(ctx, "SKU-001", custom); err != nil {
		t.Fatalf("Failed to overwrite policy: %v", err)
	}

	policy, found, err := repo.GetPolicy(ctx, "SKU-001")
	if err != nil {
		t.Fatalf("Failed to get policy: %v", err)
	}
	if !found || policy != custom {
		t.Errorf("Expected %+v, got %+v", custom, policy)
	}

	if err := repo.SavePolicy(ctx, "SKU-002", entities.DefaultPolicy()); err != nil {
		t.Fatalf("Failed to save policy: %v", err)
	}
	all, err := repo.ListPolicies(ctx)
	if err != nil {
		t.Fatalf("Failed to list policies: %v", err)
	}
	if len(all) != 2 || all["SKU-001"] != custom || all["SKU-002"] != entities.DefaultPolicy() {
		t.Errorf("Expected 2 stored policies, got %+v", all)
	}
}

func TestInventoryRepository_PostgresConcurrentTransactions(t *testing.T) {
	db := openTestDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	day := entities.NewDate(2025, time.February, 1)
	seed := []*entities.SalesRecord{
		{SKU: "SKU-001", SKUName: "Widget Alpha", SaleDate: day, StockLevel: 1000},
		{SKU: "SKU-002", SKUName: "Widget Beta", SaleDate: day, StockLevel: 50},
	}
	if err := repo.LoadSalesRecords(ctx, seed); err != nil {
		t.Fatalf("Failed to load sales records: %v", err)
	}

	// Mixed sales and purchases on one day all land in the same row
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		tx := entities.Transaction{SKU: "SKU-001", Date: day, SalesQty: 10}
		if i%2 == 1 {
			tx = entities.Transaction{SKU: "SKU-001", Date: day, PurchaseQty: 5}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.RecordTransaction(ctx, tx); err != nil {
				t.Errorf("Failed to record transaction: %v", err)
			}
		}()
	}
	wg.Wait()

	history, err := repo.GetHistory(ctx, "SKU-001", 1)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	latest := history[0]
	if latest.StockLevel != 900 || latest.SalesQty != 200 || latest.PurchaseQty != 100 {
		t.Errorf("Expected stock 900 with 200 sold and 100 bought, got %+v", latest)
	}

	// Only as many sales as the stock covers may succeed
	var succeeded, rejected atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordTransaction(ctx, entities.Transaction{SKU: "SKU-002", Date: day, SalesQty: 10})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, entities.ErrValidation):
				rejected.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded.Load() != 5 || rejected.Load() != 5 {
		t.Errorf("Expected 5 accepted and 5 rejected sales, got %d and %d", succeeded.Load(), rejected.Load())
	}
	stock, err := repo.GetCurrentStock(ctx, "SKU-002")
	if err != nil {
		t.Fatalf("Failed to get current stock: %v", err)
	}
	if stock != 0 {
		t.Errorf("Expected stock 0, got %d", stock)
	}
}

func TestNewGormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gormLogger := NewGormLogger(zap.New(core))
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM inventory_sales", 0 }

	gormLogger.Trace(ctx, time.Now(), query, nil)
	gormLogger.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("Expected fast queries and missing rows to stay quiet, got %d entries", logs.Len())
	}

	gormLogger.Trace(ctx, time.Now(), query, errors.New("connection reset"))
	gormLogger.Trace(ctx, time.Now().Add(-time.Second), query, nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("Expected failed query at error level, got %s", entries[0].Level)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("Expected slow query at warn level, got %s", entries[1].Level)
	}
}
