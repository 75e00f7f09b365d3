package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/replenish/pkg/application/services"
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/forecast"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Create repositories
	inventoryRepo := memory.NewInventoryRepository()
	policyRepo := memory.NewPolicyRepository()

	// Four weeks of history for a fast mover running low
	setupSalesHistory(ctx, inventoryRepo, entities.DateOf(today))

	// A supplier with a two week lead time and pallets of 48
	policy, err := entities.NewReplenishmentPolicy(14, 48, 120, 60, 400)
	if err != nil {
		fmt.Printf("❌ Invalid policy: %v\n", err)
		return
	}
	if err := policyRepo.SavePolicy(ctx, "SKU-100", policy); err != nil {
		fmt.Printf("❌ Failed to save policy: %v\n", err)
		return
	}

	svc := services.NewReplenishmentService(services.Dependencies{
		Inventory:  inventoryRepo,
		Policies:   policyRepo,
		Forecaster: forecast.NewSeasonalForecaster(inventoryRepo, 4, 0),
		Clock:      services.FixedClock(today),
	}, 1)

	fmt.Println("📦 Running replenishment check for SKU-100...")
	fmt.Println()

	result, err := svc.Recommend(ctx, "SKU-100", 30)
	if err != nil {
		fmt.Printf("❌ Recommendation failed: %v\n", err)
		return
	}

	rec := result.Recommendation
	fmt.Println("📊 Recommendation:")
	fmt.Printf("  Current Stock: %d\n", rec.CurrentStock)
	fmt.Printf("  Demand During Lead Time: %.2f\n", rec.DemandDuringLeadTime)
	fmt.Printf("  Projected Stock: %d\n", rec.ProjectedStockAtLeadTime)
	fmt.Printf("  Reorder Needed: %v\n", rec.ReorderNeeded)
	fmt.Printf("  Urgency: %s\n", rec.Urgency)
	fmt.Printf("  Order Quantity: %d\n", rec.OrderQuantity)
	if rec.SuggestedOrderDate != nil {
		fmt.Printf("  Order By: %s\n", rec.SuggestedOrderDate)
	}
	if rec.ExpectedArrivalDate != nil {
		fmt.Printf("  Arrives: %s\n", rec.ExpectedArrivalDate)
	}
	fmt.Println()
	fmt.Println(rec.Message)
	fmt.Println()

	fmt.Println("📈 First week of forecast:")
	for _, p := range result.Forecast[:7] {
		fmt.Printf("  %s (%s): %.2f\n", p.Date, p.Date.Weekday(), p.PredictedSales)
	}
}

func setupSalesHistory(ctx context.Context, repo *memory.InventoryRepository, today entities.Date) {
	stock := 900
	var records []*entities.SalesRecord
	for day := 27; day >= 0; day-- {
		date := today.AddDays(-day)
		sales := 22
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			sales = 12
		}
		stock -= sales
		records = append(records, &entities.SalesRecord{
			SKU:        "SKU-100",
			SKUName:    "Pallet Wrap 500mm",
			SaleDate:   date,
			SalesQty:   sales,
			StockLevel: stock,
		})
	}
	if err := repo.LoadSalesRecords(ctx, records); err != nil {
		panic(err)
	}
}
