package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUrgency_OrderAndNames(t *testing.T) {
	ordered := []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
	names := []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

	for i, u := range ordered {
		if u.String() != names[i] {
			t.Errorf("Expected %s, got %s", names[i], u.String())
		}
		if i > 0 && !(ordered[i-1] < u) {
			t.Errorf("Expected %s to be less urgent than %s", ordered[i-1], u)
		}
		parsed, err := ParseUrgency(names[i])
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", names[i], err)
		}
		if parsed != u {
			t.Errorf("Expected %s, got %s", u, parsed)
		}
	}

	if _, err := ParseUrgency("URGENT"); err == nil {
		t.Error("Expected error for unknown urgency, got none")
	}
}

func TestRecommendation_JSONUsesUrgencyNames(t *testing.T) {
	order := NewDate(2025, time.May, 1)
	rec := Recommendation{
		ReorderNeeded:      true,
		OrderQuantity:      200,
		Urgency:            UrgencyCritical,
		SuggestedOrderDate: &order,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal recommendation: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal recommendation: %v", err)
	}
	if decoded["urgency"] != "CRITICAL" {
		t.Errorf("Expected urgency CRITICAL, got %v", decoded["urgency"])
	}
	if decoded["suggested_order_date"] != "2025-05-01" {
		t.Errorf("Expected suggested_order_date 2025-05-01, got %v", decoded["suggested_order_date"])
	}
	if decoded["expected_arrival_date"] != nil {
		t.Errorf("Expected null expected_arrival_date, got %v", decoded["expected_arrival_date"])
	}
}

func TestForecastSeries(t *testing.T) {
	today := NewDate(2024, time.December, 30)
	series := NewForecastSeries(today, []float64{1.5, 2, 3.25})

	if len(series) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(series))
	}
	if series[0].Date.String() != "2024-12-31" || series[2].Date.String() != "2025-01-02" {
		t.Errorf("Expected dates starting tomorrow, got %s..%s", series[0].Date, series[2].Date)
	}
	if series.Total() != 6.75 {
		t.Errorf("Expected total 6.75, got %v", series.Total())
	}
	if d := series.Demands(); d[1] != 2 {
		t.Errorf("Expected demand 2 at index 1, got %v", d[1])
	}
}
