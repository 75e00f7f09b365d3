package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/replenish/pkg/application/services"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
	"github.com/vsinha/replenish/pkg/infrastructure/metrics"
	fixtures "github.com/vsinha/replenish/pkg/infrastructure/testing"
	"github.com/vsinha/replenish/pkg/interfaces/api/handler"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	inventory, policies := fixtures.BuildStoreFixture()
	reg := metrics.NewRegistry()
	store := events.NewBoundedEventStore(100, nil)
	deps := services.Dependencies{
		Inventory:  inventory,
		Policies:   policies,
		Forecaster: fixtures.NewStaticForecaster(),
		Publisher:  events.NewStorePublisher(store),
		Metrics:    reg,
		Clock:      services.FixedClock(fixtures.FixtureToday),
	}

	h := handler.NewHandlers(handler.Services{
		Inventory:     services.NewInventoryService(deps),
		Forecast:      services.NewForecastService(deps),
		Replenishment: services.NewReplenishmentService(deps, 2),
		Policy:        services.NewPolicyService(deps),
		Events:        store,
	})

	return NewRouter(RouterConfig{
		Mode:     gin.TestMode,
		Handlers: h,
		Metrics:  reg,
		Build:    BuildInfo{Version: "test", BuildTime: "now"},
	})
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(path, "/api/") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(t, r, http.MethodGet, "/health/live", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("Expected 200 ok, got %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	w, _ = do(t, r, http.MethodGet, "/version", "")
	if !strings.Contains(w.Body.String(), `"version":"test"`) {
		t.Errorf("Expected version in body, got %s", w.Body.String())
	}
}

func TestRouter_ListSKUs(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/skus", "")
	if w.Code != http.StatusOK || env.Code != 0 || env.Message != "success" {
		t.Fatalf("Expected success, got %d %+v", w.Code, env)
	}

	var skus []struct {
		ID           string `json:"sku_id"`
		CurrentStock int    `json:"current_stock"`
	}
	if err := json.Unmarshal(env.Data, &skus); err != nil {
		t.Fatalf("Failed to decode SKUs: %v", err)
	}
	if len(skus) != len(fixtures.StandardSKUs) {
		t.Fatalf("Expected %d SKUs, got %d", len(fixtures.StandardSKUs), len(skus))
	}
	if skus[1].ID != "SKU-002" || skus[1].CurrentStock != 30 {
		t.Errorf("Expected SKU-002 at 30, got %+v", skus[1])
	}
}

func TestRouter_Replenishment(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/skus/SKU-002/replenishment?days=30", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	var result struct {
		Policy struct {
			IsDefault bool `json:"is_default"`
		} `json:"policy"`
		Recommendation struct {
			ReorderNeeded       bool    `json:"reorder_needed"`
			OrderQuantity       int     `json:"order_quantity"`
			Urgency             string  `json:"urgency"`
			SuggestedOrderDate  *string `json:"suggested_order_date"`
			ExpectedArrivalDate *string `json:"expected_arrival_date"`
		} `json:"recommendation"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	rec := result.Recommendation
	if !rec.ReorderNeeded || rec.OrderQuantity != 220 || rec.Urgency != "CRITICAL" {
		t.Errorf("Expected CRITICAL reorder of 220, got %+v", rec)
	}
	if rec.SuggestedOrderDate == nil || *rec.SuggestedOrderDate != "2025-03-10" {
		t.Errorf("Expected order date 2025-03-10, got %v", rec.SuggestedOrderDate)
	}
	if rec.ExpectedArrivalDate == nil || *rec.ExpectedArrivalDate != "2025-03-17" {
		t.Errorf("Expected arrival 2025-03-17, got %v", rec.ExpectedArrivalDate)
	}
	if !result.Policy.IsDefault {
		t.Error("Expected default policy flag")
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/replenishment", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var all []struct {
		SKU string `json:"sku_id"`
	}
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(all) != 3 || all[0].SKU != "SKU-002" || all[2].SKU != "SKU-001" {
		t.Errorf("Expected results ordered by urgency, got %+v", all)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		body         string
		expectStatus int
		expectCode   int
		expectField  string
	}{
		{
			name:         "unknown sku",
			method:       http.MethodGet,
			path:         "/api/v1/skus/SKU-404/replenishment",
			expectStatus: http.StatusNotFound,
			expectCode:   40400,
		},
		{
			name:         "bad days",
			method:       http.MethodGet,
			path:         "/api/v1/skus/SKU-001/history?days=abc",
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
			expectField:  "days",
		},
		{
			name:         "days out of range",
			method:       http.MethodGet,
			path:         "/api/v1/skus/SKU-001/forecast?days=0",
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
			expectField:  "days",
		},
		{
			name:         "invalid policy",
			method:       http.MethodPut,
			path:         "/api/v1/skus/SKU-001/replenishment/settings",
			body:         `{"lead_time_days":7,"min_order_qty":0,"reorder_point":50,"safety_stock":25,"target_stock_level":150}`,
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
			expectField:  "min_order_qty",
		},
		{
			name:         "missing policy field",
			method:       http.MethodPut,
			path:         "/api/v1/skus/SKU-001/replenishment/settings",
			body:         `{"lead_time_days":7,"min_order_qty":10,"reorder_point":50,"safety_stock":25}`,
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
			expectField:  "target_stock_level",
		},
		{
			name:         "policy for unknown sku",
			method:       http.MethodPut,
			path:         "/api/v1/skus/SKU-404/replenishment/settings",
			body:         `{"lead_time_days":7,"min_order_qty":10,"reorder_point":50,"safety_stock":25,"target_stock_level":150}`,
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
			expectField:  "sku_id",
		},
		{
			name:         "malformed body",
			method:       http.MethodPost,
			path:         "/api/v1/skus/SKU-001/transactions",
			body:         `{"sales_qty":`,
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
		},
		{
			name:         "oversold",
			method:       http.MethodPost,
			path:         "/api/v1/skus/SKU-002/transactions",
			body:         `{"transaction_date":"2025-03-11","sales_qty":1000}`,
			expectStatus: http.StatusBadRequest,
			expectCode:   40000,
			expectField:  "sales_qty",
		},
		{
			name:         "unknown route",
			method:       http.MethodGet,
			path:         "/api/v1/nope",
			expectStatus: http.StatusNotFound,
			expectCode:   40400,
		},
	}

	r := newTestRouter(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, r, tc.method, tc.path, tc.body)
			if w.Code != tc.expectStatus {
				t.Errorf("Expected status %d, got %d: %s", tc.expectStatus, w.Code, w.Body.String())
			}
			if env.Code != tc.expectCode {
				t.Errorf("Expected code %d, got %d", tc.expectCode, env.Code)
			}
			if tc.expectField != "" {
				var fe handler.FieldError
				if err := json.Unmarshal(env.Data, &fe); err != nil {
					t.Fatalf("Failed to decode field error: %v", err)
				}
				if fe.Field != tc.expectField {
					t.Errorf("Expected field %s, got %s", tc.expectField, fe.Field)
				}
			}
		})
	}
}

func TestRouter_PolicyRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	body := `{"lead_time_days":3,"min_order_qty":100,"reorder_point":40,"safety_stock":10,"target_stock_level":120}`

	w, _ := do(t, r, http.MethodPut, "/api/v1/skus/SKU-003/replenishment/settings", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	_, env := do(t, r, http.MethodGet, "/api/v1/skus/SKU-003/replenishment/settings", "")
	var setting struct {
		LeadTimeDays int  `json:"lead_time_days"`
		IsDefault    bool `json:"is_default"`
	}
	if err := json.Unmarshal(env.Data, &setting); err != nil {
		t.Fatalf("Failed to decode setting: %v", err)
	}
	if setting.LeadTimeDays != 3 || setting.IsDefault {
		t.Errorf("Expected custom lead time 3, got %+v", setting)
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/replenishment/settings", "")
	var list []struct {
		SKU    string `json:"sku_id"`
		Policy struct {
			LeadTimeDays int  `json:"lead_time_days"`
			IsDefault    bool `json:"is_default"`
		} `json:"policy"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("Failed to decode policy list: %v", err)
	}
	if len(list) != 3 || list[2].SKU != "SKU-003" || list[2].Policy.IsDefault || list[2].Policy.LeadTimeDays != 3 {
		t.Errorf("Expected SKU-003 custom in listing, got %+v", list)
	}
	if !list[0].Policy.IsDefault || list[0].Policy.LeadTimeDays != 7 {
		t.Errorf("Expected SKU-001 default in listing, got %+v", list[0])
	}
}

func TestRouter_RecordTransaction(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/skus/SKU-001/transactions", `{"transaction_date":"2025-03-11","sales_qty":40,"purchase_qty":100}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	var record struct {
		StockLevel int `json:"stock_level"`
	}
	if err := json.Unmarshal(env.Data, &record); err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}
	if record.StockLevel != 560 {
		t.Errorf("Expected stock 560, got %d", record.StockLevel)
	}

	w, _ = do(t, r, http.MethodGet, "/metrics", "")
	if !strings.Contains(w.Body.String(), "replenish_transactions_total 1") {
		t.Errorf("Expected transaction counter in metrics output")
	}
}

func TestRouter_Events(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodGet, "/api/v1/skus/SKU-002/replenishment", "")
	w, _ := do(t, r, http.MethodPost, "/api/v1/skus/SKU-001/transactions", `{"transaction_date":"2025-03-11","sales_qty":40}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}

	type event struct {
		Type     string `json:"type"`
		StreamID string `json:"stream_id"`
		Version  int    `json:"version"`
	}

	_, env := do(t, r, http.MethodGet, "/api/v1/events", "")
	var page struct {
		Events       []event `json:"events"`
		NextPosition int     `json:"next_position"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("Failed to decode page: %v", err)
	}
	if len(page.Events) != 2 || page.NextPosition != 2 {
		t.Fatalf("Expected 2 events and next position 2, got %+v", page)
	}
	if page.Events[0].Type != events.RecommendationIssuedEvent || page.Events[0].StreamID != "SKU-002" {
		t.Errorf("Expected recommendation for SKU-002 first, got %+v", page.Events[0])
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/events?from=2", "")
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("Failed to decode page: %v", err)
	}
	if len(page.Events) != 0 || page.NextPosition != 2 {
		t.Errorf("Expected an empty page at position 2, got %+v", page)
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/skus/SKU-001/events", "")
	var stream []event
	if err := json.Unmarshal(env.Data, &stream); err != nil {
		t.Fatalf("Failed to decode stream: %v", err)
	}
	if len(stream) != 1 || stream[0].Type != events.TransactionRecordedEvent || stream[0].Version != 1 {
		t.Errorf("Expected one transaction event for SKU-001, got %+v", stream)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/events?from=-1", "")
	if w.Code != http.StatusBadRequest || env.Code != 40000 {
		t.Errorf("Expected 400 for negative position, got %d %+v", w.Code, env)
	}
}
