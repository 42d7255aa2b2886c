package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestStore() *dataset.Store {
	store := dataset.NewStore("test.csv", slog.Default())
	store.SetDataset(models.NewDataset([]models.Record{
		{OrderID: "O1", CustomerID: "C1", Region: "East", Category: "Food", ShipMode: "Standard Class", OrderDate: date(2021, 1, 5), Sales: dec("10")},
		{OrderID: "O2", CustomerID: "C2", Region: "West", Category: "Food", ShipMode: "Second Class", OrderDate: date(2021, 1, 6), Sales: dec("20")},
		{OrderID: "O3", CustomerID: "C1", Region: "East", Category: "Toys", ShipMode: "Standard Class", OrderDate: date(2021, 2, 1), Sales: dec("5")},
	}))
	return store
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if response["success"] != true {
		t.Fatalf("expected success response, got %v", response)
	}
	return response
}

func TestAPIHandlers_HandleFilters(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	w := httptest.NewRecorder()

	h.HandleFilters(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)

	regions := data["regions"].([]any)
	if len(regions) != 2 || regions[0] != "East" || regions[1] != "West" {
		t.Errorf("unexpected regions: %v", regions)
	}
	categories := data["categories"].([]any)
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %v", categories)
	}
}

func TestAPIHandlers_HandleView_Defaults(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/view", nil)
	w := httptest.NewRecorder()

	h.HandleView(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)

	if data["row_count"] != float64(3) {
		t.Errorf("expected row_count 3, got %v", data["row_count"])
	}

	kpis := data["kpis"].(map[string]any)
	if kpis["total_sales"] != "35" {
		t.Errorf("expected total sales 35, got %v", kpis["total_sales"])
	}
	if kpis["order_count"] != float64(3) {
		t.Errorf("expected 3 orders, got %v", kpis["order_count"])
	}
	if kpis["customer_count"] != float64(2) {
		t.Errorf("expected 2 customers, got %v", kpis["customer_count"])
	}
}

func TestAPIHandlers_HandleView_Filtered(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet,
		"/api/view?regions=East&categories=Food,Toys&start=2021-01-01&end=2021-01-31", nil)
	w := httptest.NewRecorder()

	h.HandleView(w, req)

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)

	if data["row_count"] != float64(1) {
		t.Errorf("expected row_count 1, got %v", data["row_count"])
	}

	kpis := data["kpis"].(map[string]any)
	if kpis["total_sales"] != "10" {
		t.Errorf("expected total sales 10, got %v", kpis["total_sales"])
	}

	charts := data["charts"].(map[string]any)
	daily := charts["sales_over_time"].([]any)
	if len(daily) != 1 {
		t.Fatalf("expected 1 daily sales row, got %d", len(daily))
	}
}

func TestAPIHandlers_HandleView_EmptySelection(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/view?regions=", nil)
	w := httptest.NewRecorder()

	h.HandleView(w, req)

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)

	if data["row_count"] != float64(0) {
		t.Errorf("expected empty view, got row_count %v", data["row_count"])
	}

	kpis := data["kpis"].(map[string]any)
	if kpis["avg_sale"] != nil {
		t.Errorf("expected null avg_sale for an empty view, got %v", kpis["avg_sale"])
	}
	if kpis["total_sales"] != "0" {
		t.Errorf("expected zero total sales, got %v", kpis["total_sales"])
	}
}

func TestAPIHandlers_HandleView_BadDate(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/view?start=January", nil)
	w := httptest.NewRecorder()

	h.HandleView(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAPIHandlers_HandleSalesOverTime(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/sales-over-time", nil)
	w := httptest.NewRecorder()

	h.HandleSalesOverTime(w, req)

	response := decodeSuccess(t, w)
	rows := response["data"].([]any)
	if len(rows) != 3 {
		t.Fatalf("expected 3 daily rows, got %d", len(rows))
	}

	// Ascending date order.
	var prev time.Time
	for i, raw := range rows {
		row := raw.(map[string]any)
		d, err := time.Parse(time.RFC3339, row["date"].(string))
		if err != nil {
			t.Fatal(err)
		}
		if i > 0 && !prev.Before(d) {
			t.Errorf("dates not ascending at index %d", i)
		}
		prev = d
	}
}

func TestAPIHandlers_HandleShipments(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/shipments?regions=West", nil)
	w := httptest.NewRecorder()

	h.HandleShipments(w, req)

	response := decodeSuccess(t, w)
	rows := response["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 shipment point, got %d", len(rows))
	}
	point := rows[0].(map[string]any)
	if point["ship_mode"] != "Second Class" || point["region"] != "West" {
		t.Errorf("unexpected shipment point: %v", point)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", data["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	h := NewAPIHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)
	if data["record_count"] != float64(3) {
		t.Errorf("expected record_count 3, got %v", data["record_count"])
	}
}

func TestChartHandlers_ServePNG(t *testing.T) {
	h := NewChartHandlers(newTestStore(), slog.Default())

	tests := []struct {
		name    string
		url     string
		handler http.HandlerFunc
	}{
		{"sales trend", "/charts/sales-trend.png", h.HandleSalesTrend},
		{"category sales", "/charts/category-sales.png", h.HandleCategorySales},
		{"sales histogram", "/charts/sales-histogram.png", h.HandleSalesHistogram},
		{"shipments", "/charts/shipments.png", h.HandleShipments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("expected image/png, got %q", ct)
			}
			if w.Body.Len() == 0 {
				t.Error("expected PNG bytes")
			}
		})
	}
}

func TestChartHandlers_EmptyViewAnswers204(t *testing.T) {
	h := NewChartHandlers(newTestStore(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/charts/sales-trend.png?regions=", nil)
	w := httptest.NewRecorder()

	h.HandleSalesTrend(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}
