package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/csv"
)

func TestGenerateCommand_Generate(t *testing.T) {
	start := entities.NewDate(2023, 1, 1)
	cmd := NewGenerateCommand(GenerateConfig{Seed: 42})
	records := cmd.Generate(DefaultProfiles, start, 120)

	if len(records) != len(DefaultProfiles)*120 {
		t.Fatalf("Expected %d records, got %d", len(DefaultProfiles)*120, len(records))
	}

	restocks := 0
	for _, r := range records {
		if r.SalesQty < 1 {
			t.Errorf("Expected at least one unit sold, got %d for %s on %s", r.SalesQty, r.SKU, r.SaleDate)
		}
		if r.StockLevel < 0 {
			t.Errorf("Expected non-negative stock, got %d", r.StockLevel)
		}
		if r.PurchaseQty != 0 {
			restocks++
			if r.PurchaseQty < restockMin || r.PurchaseQty >= restockMax {
				t.Errorf("Expected purchase in [%d, %d), got %d", restockMin, restockMax, r.PurchaseQty)
			}
		}
	}
	if restocks == 0 {
		t.Error("Expected at least one restock over 120 days")
	}

	again := NewGenerateCommand(GenerateConfig{Seed: 42}).Generate(DefaultProfiles, start, 120)
	for i := range records {
		if *records[i] != *again[i] {
			t.Fatalf("Expected identical output for the same seed at row %d", i)
		}
	}
}

func TestGenerateCommand_Execute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sales.csv")
	cmd := NewGenerateCommand(GenerateConfig{Output: path, Days: 30, Start: "2024-01-01", Seed: 7})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}

	records, err := csv.NewLoader().LoadSalesRecords(path)
	if err != nil {
		t.Fatalf("Failed to load generated CSV: %v", err)
	}
	if len(records) != len(DefaultProfiles)*30 {
		t.Errorf("Expected %d rows, got %d", len(DefaultProfiles)*30, len(records))
	}

	bad := NewGenerateCommand(GenerateConfig{Output: path, Days: 0, Start: "2024-01-01"})
	if err := bad.Execute(context.Background()); err == nil {
		t.Error("Expected error for zero days")
	}
}

func TestRecommendCommand_Execute(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	gen := NewGenerateCommand(GenerateConfig{Output: input, Days: 90, Start: "2024-01-01", Seed: 42})
	if err := gen.Execute(context.Background()); err != nil {
		t.Fatalf("Failed to generate input: %v", err)
	}

	policies := filepath.Join(dir, "policies.csv")
	content := "sku_id,lead_time_days,min_order_qty,reorder_point,safety_stock,target_stock_level\nSKU-003,5,25,80,30,300\n"
	if err := os.WriteFile(policies, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write policies: %v", err)
	}

	out := filepath.Join(dir, "recommendations.json")
	cmd := NewRecommendCommand(RecommendConfig{
		Input:         input,
		Policies:      policies,
		Days:          30,
		LookbackWeeks: 4,
		Format:        "json",
		OutputFile:    out,
	})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Failed to recommend: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var results []struct {
		SKU    string `json:"sku_id"`
		Policy struct {
			IsDefault    bool `json:"is_default"`
			LeadTimeDays int  `json:"lead_time_days"`
		} `json:"policy"`
		Forecast []struct {
			Date string `json:"date"`
		} `json:"forecast"`
	}
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if len(results) != len(DefaultProfiles) {
		t.Fatalf("Expected %d results, got %d", len(DefaultProfiles), len(results))
	}
	for _, r := range results {
		if r.SKU == "SKU-003" && (r.Policy.IsDefault || r.Policy.LeadTimeDays != 5) {
			t.Errorf("Expected custom policy for SKU-003, got %+v", r.Policy)
		}
		// 90 days from 2024-01-01 ends 2024-03-30
		if len(r.Forecast) != 30 || r.Forecast[0].Date != "2024-03-31" {
			t.Errorf("Expected 30 days from 2024-03-31 for %s, got %d from %v", r.SKU, len(r.Forecast), r.Forecast)
		}
	}
}

func TestRecommendCommand_UnknownSKU(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	gen := NewGenerateCommand(GenerateConfig{Output: input, Days: 14, Start: "2024-01-01", Seed: 1})
	if err := gen.Execute(context.Background()); err != nil {
		t.Fatalf("Failed to generate input: %v", err)
	}

	cmd := NewRecommendCommand(RecommendConfig{Input: input, SKU: "SKU-999", Days: 30, LookbackWeeks: 1, Format: "text"})
	if err := cmd.Execute(context.Background()); err == nil {
		t.Error("Expected error for unknown SKU")
	}
}

func TestRecommendCommand_ReferenceDate(t *testing.T) {
	latest := entities.NewDate(2024, time.January, 30)
	records := []*entities.SalesRecord{
		{SKU: "SKU-001", SaleDate: latest.AddDays(-1)},
		{SKU: "SKU-001", SaleDate: latest},
		{SKU: "SKU-002", SaleDate: latest.AddDays(-5)},
	}

	testCases := []struct {
		name   string
		today  string
		expect string
	}{
		{"defaults to newest record", "", "2024-01-30"},
		{"explicit date", "2024-02-15", "2024-02-15"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewRecommendCommand(RecommendConfig{Today: tc.today})
			got, err := cmd.referenceDate(records)
			if err != nil {
				t.Fatalf("Failed to resolve reference date: %v", err)
			}
			if got.String() != tc.expect {
				t.Errorf("Expected %s, got %s", tc.expect, got)
			}
		})
	}
}
