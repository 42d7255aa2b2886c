package services

import (
	"math"
	"slices"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// ChartTables are the four pre-aggregated tables the dashboard charts draw
// from. SalesOverTime is grouped and summed per distinct order date in
// ascending date order; the other three are plain projections of the
// filtered view with no reduction.
type ChartTables struct {
	SalesOverTime []models.DailySales    `json:"sales_over_time"`
	CategorySales []models.CategorySale  `json:"category_sales"`
	SalesValues   []decimal.Decimal      `json:"sales_values"`
	Shipments     []models.ShipmentPoint `json:"shipments"`
}

// View is everything one filter selection produces: the matching rows in
// their original order, the KPI scalars, and the chart tables.
type View struct {
	Records []models.Record
	KPIs    models.KPISummary
	Charts  ChartTables
}

// FilterOptions is the filter metadata the sidebar widgets are built from:
// the distinct choices present in the dataset and the order-date bounds.
type FilterOptions struct {
	Regions    []string  `json:"regions"`
	Categories []string  `json:"categories"`
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
}

func Options(ds *models.Dataset) FilterOptions {
	minDate, maxDate := ds.DateBounds()
	return FilterOptions{
		Regions:    ds.Regions(),
		Categories: ds.Categories(),
		MinDate:    minDate,
		MaxDate:    maxDate,
	}
}

// AllOf is the default selection: every region, every category, the full
// date span. It mirrors the widgets' initial state.
func AllOf(ds *models.Dataset) models.Selection {
	minDate, maxDate := ds.DateBounds()
	return models.Selection{
		Regions:    ds.Regions(),
		Categories: ds.Categories(),
		DateStart:  minDate,
		DateEnd:    maxDate,
	}
}

// ComputeView recomputes the filtered view, KPIs and chart tables for one
// selection. It is a pure function of its inputs: the dataset is never
// mutated and no state is carried between calls, so it is re-run from
// scratch on every filter change.
//
// A record is kept iff its Region is selected, its Category is selected,
// and DateStart <= OrderDate <= DateEnd (both ends inclusive). The view
// preserves the dataset's row order.
func ComputeView(ds *models.Dataset, sel models.Selection) View {
	regions := toSet(sel.Regions)
	categories := toSet(sel.Categories)

	var filtered []models.Record
	for _, r := range ds.Records() {
		if r.OrderDate.Before(sel.DateStart) || r.OrderDate.After(sel.DateEnd) {
			continue
		}
		if !regions[r.Region] || !categories[r.Category] {
			continue
		}
		filtered = append(filtered, r)
	}

	return View{
		Records: filtered,
		KPIs:    computeKPIs(filtered),
		Charts:  computeCharts(filtered),
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// computeKPIs derives the four headline scalars. Sales sums use exact
// decimal arithmetic; the mean of an empty view is NaN, never an error.
func computeKPIs(view []models.Record) models.KPISummary {
	total := decimal.Zero
	orders := make(map[string]bool)
	customers := make(map[string]bool)

	for _, r := range view {
		total = total.Add(r.Sales)
		orders[r.OrderID] = true
		customers[r.CustomerID] = true
	}

	avg := math.NaN()
	if len(view) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(view)))).InexactFloat64()
	}

	return models.KPISummary{
		TotalSales:    total,
		OrderCount:    len(orders),
		CustomerCount: len(customers),
		AvgSale:       avg,
	}
}

func computeCharts(view []models.Record) ChartTables {
	var charts ChartTables

	daily := make(map[time.Time]decimal.Decimal)
	for _, r := range view {
		daily[r.OrderDate] = daily[r.OrderDate].Add(r.Sales)
		charts.CategorySales = append(charts.CategorySales, models.CategorySale{
			Category: r.Category,
			Sales:    r.Sales,
		})
		charts.SalesValues = append(charts.SalesValues, r.Sales)
		charts.Shipments = append(charts.Shipments, models.ShipmentPoint{
			Sales:    r.Sales,
			ShipMode: r.ShipMode,
			Region:   r.Region,
		})
	}

	charts.SalesOverTime = make([]models.DailySales, 0, len(daily))
	for date, sales := range daily {
		charts.SalesOverTime = append(charts.SalesOverTime, models.DailySales{Date: date, Sales: sales})
	}
	// Map iteration order is random; the chart contract wants ascending dates.
	slices.SortFunc(charts.SalesOverTime, func(a, b models.DailySales) int {
		return a.Date.Compare(b.Date)
	})

	return charts
}
