package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

var kpiTemplate = template.Must(template.New("kpiRow").Parse(`
<div id="kpi-row" class="kpi-row">
<div class="kpi-box">💰 Total Sales<br>${{.TotalSales}}</div>
<div class="kpi-box">📦 Orders<br>{{.OrderCount}}</div>
<div class="kpi-box">👥 Customers<br>{{.CustomerCount}}</div>
<div class="kpi-box">📈 Avg Sale<br>{{.AvgSale}}</div>
</div>`))

var chartGridTemplate = template.Must(template.New("chartGrid").Parse(`
<div id="charts-grid" class="charts-grid">
<figure><img id="chart-sales-trend" src="{{.Trend}}" alt="Sales trend over time"></figure>
<figure><img id="chart-category-sales" src="{{.Categories}}" alt="Sales by category"></figure>
<figure><img id="chart-sales-histogram" src="{{.Histogram}}" alt="Sales distribution"></figure>
<figure><img id="chart-shipments" src="{{.Shipments}}" alt="Sales vs ship mode"></figure>
</div>`))

// filterSignals mirrors the page's datastar signal names. Nil slices mean
// the signal was absent and default to all values; empty slices are a
// deliberate empty selection.
type filterSignals struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	DateStart  string   `json:"dateStart"`
	DateEnd    string   `json:"dateEnd"`
}

type SSEHandlers struct {
	store  *dataset.Store
	logger *slog.Logger
}

func NewSSEHandlers(store *dataset.Store, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		logger: logger,
	}
}

// HandleRefresh is the dashboard's recompute loop: every widget change
// sends the filter signals here, the view is recomputed synchronously, and
// the KPI row plus the chart images are patched back.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ds, err := h.store.Dataset(r.Context())
	if err != nil {
		h.logger.Error("load dataset for refresh", "error", err)
		return
	}

	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Error("read filter signals", "error", err)
		return
	}

	sel := h.selection(ds, signals)
	view := services.ComputeView(ds, sel)

	kpiHTML, err := renderKPIRow(view.KPIs)
	if err != nil {
		h.logger.Error("render kpi row", "error", err)
		return
	}
	sse.PatchElements(kpiHTML)

	chartHTML, err := renderChartGrid(sel)
	if err != nil {
		h.logger.Error("render chart grid", "error", err)
		return
	}
	sse.PatchElements(chartHTML)

	counts, err := json.Marshal(map[string]any{
		"rowCount": len(view.Records),
	})
	if err != nil {
		h.logger.Error("marshal row count signal", "error", err)
		return
	}
	sse.PatchSignals(counts)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) selection(ds *models.Dataset, signals filterSignals) models.Selection {
	sel := services.AllOf(ds)

	if signals.Regions != nil {
		sel.Regions = signals.Regions
	}
	if signals.Categories != nil {
		sel.Categories = signals.Categories
	}
	if signals.DateStart != "" {
		if t, err := time.Parse(dateParamLayout, signals.DateStart); err == nil {
			sel.DateStart = t
		} else {
			h.logger.Warn("ignoring bad dateStart signal", "value", signals.DateStart)
		}
	}
	if signals.DateEnd != "" {
		if t, err := time.Parse(dateParamLayout, signals.DateEnd); err == nil {
			sel.DateEnd = t
		} else {
			h.logger.Warn("ignoring bad dateEnd signal", "value", signals.DateEnd)
		}
	}

	return sel
}

type kpiRow struct {
	TotalSales    string
	OrderCount    int
	CustomerCount int
	AvgSale       string
}

func renderKPIRow(kpis models.KPISummary) (string, error) {
	row := kpiRow{
		TotalSales:    kpis.TotalSales.StringFixed(2),
		OrderCount:    kpis.OrderCount,
		CustomerCount: kpis.CustomerCount,
		AvgSale:       "n/a",
	}
	if !math.IsNaN(kpis.AvgSale) {
		row.AvgSale = fmt.Sprintf("$%.2f", kpis.AvgSale)
	}

	var buf strings.Builder
	err := kpiTemplate.Execute(&buf, row)
	return buf.String(), err
}

// chartGrid holds the four snapshot URLs carrying the active filters. They
// are built and encoded here, so the template must not re-escape them.
type chartGrid struct {
	Trend      template.URL
	Categories template.URL
	Histogram  template.URL
	Shipments  template.URL
}

func renderChartGrid(sel models.Selection) (string, error) {
	q := url.Values{}
	q.Set("regions", strings.Join(sel.Regions, ","))
	q.Set("categories", strings.Join(sel.Categories, ","))
	q.Set("start", sel.DateStart.Format(dateParamLayout))
	q.Set("end", sel.DateEnd.Format(dateParamLayout))
	query := q.Encode()

	grid := chartGrid{
		Trend:      template.URL("/charts/sales-trend.png?" + query),
		Categories: template.URL("/charts/category-sales.png?" + query),
		Histogram:  template.URL("/charts/sales-histogram.png?" + query),
		Shipments:  template.URL("/charts/shipments.png?" + query),
	}

	var buf strings.Builder
	err := chartGridTemplate.Execute(&buf, grid)
	return buf.String(), err
}
