package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

var (
	salesHeader  = []string{"sku_id", "sku_name", "sale_date", "sales_qty", "purchase_qty", "stock_level"}
	policyHeader = []string{"sku_id", "lead_time_days", "min_order_qty", "reorder_point", "safety_stock", "target_stock_level"}
)

// Loader handles loading inventory data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSalesRecords loads daily sales history from a CSV file
func (l *Loader) LoadSalesRecords(filename string) ([]*entities.SalesRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadSalesRecords(file)
}

// ReadSalesRecords reads daily sales history in CSV form
func (l *Loader) ReadSalesRecords(r io.Reader) ([]*entities.SalesRecord, error) {
	records, err := readAll(r, "sales", salesHeader)
	if err != nil {
		return nil, err
	}

	sales := make([]*entities.SalesRecord, 0, len(records))
	for i, record := range records {
		sale, err := parseSalesRecord(record)
		if err != nil {
			return nil, fmt.Errorf("sales CSV row %d: %w", i+2, err)
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

// LoadPolicies loads per-SKU replenishment policies from a CSV file
func (l *Loader) LoadPolicies(filename string) (map[entities.SKUID]entities.ReplenishmentPolicy, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open policies file %s: %w", filename, err)
	}
	defer file.Close()

	records, err := readAll(file, "policies", policyHeader)
	if err != nil {
		return nil, err
	}

	policies := make(map[entities.SKUID]entities.ReplenishmentPolicy, len(records))
	for i, record := range records {
		sku := entities.SKUID(strings.TrimSpace(record[0]))
		if sku == "" {
			return nil, fmt.Errorf("policies CSV row %d: sku_id cannot be empty", i+2)
		}

		values, err := parseInts(record[1:], policyHeader[1:])
		if err != nil {
			return nil, fmt.Errorf("policies CSV row %d: %w", i+2, err)
		}

		policy, err := entities.NewReplenishmentPolicy(values[0], values[1], values[2], values[3], values[4])
		if err != nil {
			return nil, fmt.Errorf("policies CSV row %d: %w", i+2, err)
		}
		policies[sku] = policy
	}

	return policies, nil
}

// WriteSalesRecords writes daily sales history in the same CSV form the loader reads
func WriteSalesRecords(w io.Writer, records []*entities.SalesRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(salesHeader); err != nil {
		return fmt.Errorf("failed to write sales header: %w", err)
	}

	for _, r := range records {
		row := []string{
			string(r.SKU),
			r.SKUName,
			r.SaleDate.String(),
			strconv.Itoa(r.SalesQty),
			strconv.Itoa(r.PurchaseQty),
			strconv.Itoa(r.StockLevel),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write sales row for %s: %w", r.SKU, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func readAll(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseSalesRecord(record []string) (*entities.SalesRecord, error) {
	saleDate, err := entities.ParseDate(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid sale_date: %w", err)
	}

	values, err := parseInts(record[3:], salesHeader[3:])
	if err != nil {
		return nil, err
	}

	return entities.NewSalesRecord(
		entities.SKUID(strings.TrimSpace(record[0])),
		strings.TrimSpace(record[1]),
		saleDate,
		values[0],
		values[1],
		values[2],
	)
}

func parseInts(fields, names []string) ([]int, error) {
	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", names[i], field)
		}
		values[i] = v
	}
	return values, nil
}
