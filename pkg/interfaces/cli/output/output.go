package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format      string
	OutputFile  string    // Written instead of Writer when set
	Writer      io.Writer // Defaults to stdout
	Verbose     bool
	ElapsedTime time.Duration
}

var reportHeaders = []string{
	"sku_id",
	"reorder_needed",
	"urgency",
	"order_quantity",
	"current_stock",
	"demand_during_lead_time",
	"projected_stock_at_lead_time",
	"reorder_point",
	"safety_stock",
	"target_stock_level",
	"policy",
	"suggested_order_date",
	"expected_arrival_date",
	"message",
}

// Generate writes the recommendations in the configured format
func Generate(results []*dto.ReplenishmentResult, config Config) error {
	if config.Format == "xlsx" {
		if config.OutputFile == "" {
			return fmt.Errorf("output file required for xlsx format")
		}
		return generateXLSXOutput(results, config)
	}

	w := config.Writer
	if w == nil {
		w = os.Stdout
	}
	if config.OutputFile != "" {
		file, err := os.Create(config.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", config.OutputFile, err)
		}
		defer file.Close()
		w = file
	}

	var err error
	switch config.Format {
	case "", "text":
		err = generateTextOutput(w, results, config)
	case "json":
		err = generateJSONOutput(w, results)
	case "csv":
		err = generateCSVOutput(w, results)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
	if err != nil {
		return err
	}

	if config.Verbose && config.OutputFile != "" {
		fmt.Printf("💾 Results saved to: %s\n", config.OutputFile)
	}
	return nil
}

// generateTextOutput creates a human-readable table
func generateTextOutput(w io.Writer, results []*dto.ReplenishmentResult, config Config) error {
	reorders := 0
	for _, r := range results {
		if r.Recommendation.ReorderNeeded {
			reorders++
		}
	}

	fmt.Fprintf(w, "📊 Replenishment Summary\n")
	fmt.Fprintf(w, "========================\n\n")
	fmt.Fprintf(w, "SKUs: %d\n", len(results))
	fmt.Fprintf(w, "Reorders: %d\n", reorders)
	if config.Verbose {
		fmt.Fprintf(w, "Elapsed: %v\n", config.ElapsedTime)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-10s %-9s %-8s %-8s %-10s %-8s %-12s %-12s\n",
		"SKU", "Urgency", "Qty", "Stock", "Demand", "Proj", "Order Date", "Arrival")
	fmt.Fprintf(w, "%-10s %-9s %-8s %-8s %-10s %-8s %-12s %-12s\n",
		"----------", "---------", "--------", "--------", "----------", "--------", "------------", "------------")

	for _, r := range results {
		rec := r.Recommendation
		fmt.Fprintf(w, "%-10s %-9s %-8d %-8d %-10.2f %-8d %-12s %-12s\n",
			r.SKU,
			rec.Urgency,
			rec.OrderQuantity,
			rec.CurrentStock,
			rec.DemandDuringLeadTime,
			rec.ProjectedStockAtLeadTime,
			formatDate(rec.SuggestedOrderDate),
			formatDate(rec.ExpectedArrivalDate))
	}
	fmt.Fprintln(w)

	for _, r := range results {
		fmt.Fprintf(w, "%s: %s\n", r.SKU, r.Recommendation.Message)
	}
	return nil
}

// generateJSONOutput writes the full results as indented JSON
func generateJSONOutput(w io.Writer, results []*dto.ReplenishmentResult) error {
	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// generateCSVOutput writes one row per SKU
func generateCSVOutput(w io.Writer, results []*dto.ReplenishmentResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write(reportRow(r)); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.SKU, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// generateXLSXOutput writes a recommendations sheet and a forecast sheet
func generateXLSXOutput(results []*dto.ReplenishmentResult, config Config) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Recommendations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	criticalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})
	if err != nil {
		return fmt.Errorf("failed to create urgency style: %w", err)
	}

	if err := writeHeader(f, sheet, reportHeaders, headerStyle); err != nil {
		return err
	}
	for i, r := range results {
		rec := r.Recommendation
		row := i + 2
		values := []any{
			string(r.SKU),
			rec.ReorderNeeded,
			rec.Urgency.String(),
			rec.OrderQuantity,
			rec.CurrentStock,
			rec.DemandDuringLeadTime,
			rec.ProjectedStockAtLeadTime,
			rec.ReorderPoint,
			rec.SafetyStock,
			rec.TargetStockLevel,
			policyLabel(r.Policy),
			formatDate(rec.SuggestedOrderDate),
			formatDate(rec.ExpectedArrivalDate),
			rec.Message,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.SKU, err)
		}
		if rec.Urgency == entities.UrgencyCritical {
			urgencyCell, _ := excelize.CoordinatesToCellName(3, row)
			f.SetCellStyle(sheet, urgencyCell, urgencyCell, criticalStyle)
		}
	}
	colWidths := []float64{10, 14, 10, 14, 13, 22, 26, 13, 12, 18, 9, 20, 21, 80}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	forecastSheet := "Forecast"
	if _, err := f.NewSheet(forecastSheet); err != nil {
		return fmt.Errorf("failed to create forecast sheet: %w", err)
	}
	if err := writeHeader(f, forecastSheet, []string{"sku_id", "date", "predicted_sales"}, headerStyle); err != nil {
		return err
	}
	row := 2
	for _, r := range results {
		for _, p := range r.Forecast {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []any{string(r.SKU), p.Date.String(), p.PredictedSales}
			if err := f.SetSheetRow(forecastSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write forecast for %s: %w", r.SKU, err)
			}
			row++
		}
	}

	if err := f.SaveAs(config.OutputFile); err != nil {
		return fmt.Errorf("failed to save %s: %w", config.OutputFile, err)
	}
	if config.Verbose {
		fmt.Printf("💾 Workbook saved to: %s\n", config.OutputFile)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", h, err)
		}
		f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}

func reportRow(r *dto.ReplenishmentResult) []string {
	rec := r.Recommendation
	return []string{
		string(r.SKU),
		strconv.FormatBool(rec.ReorderNeeded),
		rec.Urgency.String(),
		strconv.Itoa(rec.OrderQuantity),
		strconv.Itoa(rec.CurrentStock),
		strconv.FormatFloat(rec.DemandDuringLeadTime, 'f', 2, 64),
		strconv.Itoa(rec.ProjectedStockAtLeadTime),
		strconv.Itoa(rec.ReorderPoint),
		strconv.Itoa(rec.SafetyStock),
		strconv.Itoa(rec.TargetStockLevel),
		policyLabel(r.Policy),
		formatDate(rec.SuggestedOrderDate),
		formatDate(rec.ExpectedArrivalDate),
		rec.Message,
	}
}

func policyLabel(setting entities.PolicySetting) string {
	if setting == nil || setting.IsDefault() {
		return "default"
	}
	return "custom"
}

func formatDate(d *entities.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
