package services

import (
	"math"
	"testing"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func testDataset() *models.Dataset {
	return models.NewDataset([]models.Record{
		{OrderID: "O1", CustomerID: "C1", Region: "East", Category: "Food", ShipMode: "Standard", OrderDate: date(2021, 1, 5), Sales: dec("10")},
		{OrderID: "O2", CustomerID: "C2", Region: "West", Category: "Food", ShipMode: "Express", OrderDate: date(2021, 1, 6), Sales: dec("20")},
		{OrderID: "O3", CustomerID: "C1", Region: "East", Category: "Toys", ShipMode: "Standard", OrderDate: date(2021, 2, 1), Sales: dec("5")},
	})
}

func TestComputeView_FiltersByRegionCategoryAndDate(t *testing.T) {
	ds := testDataset()

	view := ComputeView(ds, models.Selection{
		Regions:    []string{"East"},
		Categories: []string{"Food", "Toys"},
		DateStart:  date(2021, 1, 1),
		DateEnd:    date(2021, 1, 31),
	})

	if len(view.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(view.Records))
	}
	if view.Records[0].OrderID != "O1" {
		t.Errorf("expected O1, got %s", view.Records[0].OrderID)
	}
	if !view.KPIs.TotalSales.Equal(dec("10")) {
		t.Errorf("expected total sales 10, got %s", view.KPIs.TotalSales)
	}
	if view.KPIs.OrderCount != 1 || view.KPIs.CustomerCount != 1 {
		t.Errorf("expected 1 order and 1 customer, got %d/%d", view.KPIs.OrderCount, view.KPIs.CustomerCount)
	}

	daily := view.Charts.SalesOverTime
	if len(daily) != 1 {
		t.Fatalf("expected 1 daily sales row, got %d", len(daily))
	}
	if !daily[0].Date.Equal(date(2021, 1, 5)) || !daily[0].Sales.Equal(dec("10")) {
		t.Errorf("unexpected daily sales row: %+v", daily[0])
	}
}

func TestComputeView_InclusiveDateBounds(t *testing.T) {
	ds := testDataset()

	// Interval endpoints exactly on record dates keep those records.
	view := ComputeView(ds, models.Selection{
		Regions:    ds.Regions(),
		Categories: ds.Categories(),
		DateStart:  date(2021, 1, 5),
		DateEnd:    date(2021, 1, 6),
	})

	if len(view.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(view.Records))
	}
}

func TestComputeView_EmptyRegionSelection(t *testing.T) {
	ds := testDataset()

	view := ComputeView(ds, models.Selection{
		Regions:    nil,
		Categories: ds.Categories(),
		DateStart:  date(2021, 1, 1),
		DateEnd:    date(2021, 12, 31),
	})

	if len(view.Records) != 0 {
		t.Fatalf("expected empty view, got %d records", len(view.Records))
	}
	if !view.KPIs.TotalSales.IsZero() {
		t.Errorf("expected zero total sales, got %s", view.KPIs.TotalSales)
	}
	if !math.IsNaN(view.KPIs.AvgSale) {
		t.Errorf("expected NaN average for empty view, got %f", view.KPIs.AvgSale)
	}
	if len(view.Charts.SalesOverTime) != 0 || len(view.Charts.CategorySales) != 0 ||
		len(view.Charts.SalesValues) != 0 || len(view.Charts.Shipments) != 0 {
		t.Error("expected all chart tables to be empty")
	}
}

func TestComputeView_InvertedDateRange(t *testing.T) {
	ds := testDataset()

	view := ComputeView(ds, models.Selection{
		Regions:    ds.Regions(),
		Categories: ds.Categories(),
		DateStart:  date(2021, 12, 31),
		DateEnd:    date(2021, 1, 1),
	})

	if len(view.Records) != 0 {
		t.Errorf("inverted date range should select nothing, got %d records", len(view.Records))
	}
}

func TestComputeView_EmptyDataset(t *testing.T) {
	ds := models.NewDataset(nil)

	view := ComputeView(ds, AllOf(ds))

	if len(view.Records) != 0 {
		t.Errorf("expected no records, got %d", len(view.Records))
	}
	if !math.IsNaN(view.KPIs.AvgSale) {
		t.Error("expected NaN average for empty dataset")
	}
}

func TestComputeView_PreservesDatasetOrder(t *testing.T) {
	records := []models.Record{
		{OrderID: "O1", Region: "East", Category: "Food", OrderDate: date(2021, 1, 3), Sales: dec("1")},
		{OrderID: "O2", Region: "West", Category: "Food", OrderDate: date(2021, 1, 1), Sales: dec("2")},
		{OrderID: "O3", Region: "East", Category: "Food", OrderDate: date(2021, 1, 2), Sales: dec("3")},
		{OrderID: "O4", Region: "East", Category: "Food", OrderDate: date(2021, 1, 4), Sales: dec("4")},
	}
	ds := models.NewDataset(records)

	view := ComputeView(ds, models.Selection{
		Regions:    []string{"East"},
		Categories: []string{"Food"},
		DateStart:  date(2021, 1, 1),
		DateEnd:    date(2021, 1, 31),
	})

	want := []string{"O1", "O3", "O4"}
	if len(view.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(view.Records))
	}
	for i, id := range want {
		if view.Records[i].OrderID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, view.Records[i].OrderID)
		}
	}
}

func TestComputeView_DistinctCounts(t *testing.T) {
	records := []models.Record{
		{OrderID: "O1", CustomerID: "C1", Region: "East", Category: "Food", OrderDate: date(2021, 1, 1), Sales: dec("1")},
		{OrderID: "O1", CustomerID: "C1", Region: "East", Category: "Food", OrderDate: date(2021, 1, 1), Sales: dec("2")},
		{OrderID: "O2", CustomerID: "C1", Region: "East", Category: "Food", OrderDate: date(2021, 1, 2), Sales: dec("3")},
	}
	ds := models.NewDataset(records)

	view := ComputeView(ds, AllOf(ds))

	if view.KPIs.OrderCount != 2 {
		t.Errorf("expected 2 distinct orders, got %d", view.KPIs.OrderCount)
	}
	if view.KPIs.CustomerCount != 1 {
		t.Errorf("expected 1 distinct customer, got %d", view.KPIs.CustomerCount)
	}
	if view.KPIs.OrderCount > len(view.Records) || view.KPIs.CustomerCount > len(view.Records) {
		t.Error("distinct counts must not exceed the row count")
	}
}

func TestComputeView_ChartTableConsistency(t *testing.T) {
	records := []models.Record{
		{OrderID: "O1", CustomerID: "C1", Region: "East", Category: "Food", OrderDate: date(2021, 1, 2), Sales: dec("10.25")},
		{OrderID: "O2", CustomerID: "C2", Region: "East", Category: "Toys", OrderDate: date(2021, 1, 1), Sales: dec("4.75")},
		{OrderID: "O3", CustomerID: "C3", Region: "West", Category: "Food", OrderDate: date(2021, 1, 2), Sales: dec("5.00")},
		{OrderID: "O4", CustomerID: "C4", Region: "West", Category: "Food", OrderDate: date(2021, 1, 3), Sales: dec("1.99")},
	}
	ds := models.NewDataset(records)

	view := ComputeView(ds, AllOf(ds))

	// Total sales must match the histogram projection exactly.
	histSum := decimal.Zero
	for _, v := range view.Charts.SalesValues {
		histSum = histSum.Add(v)
	}
	if !histSum.Equal(view.KPIs.TotalSales) {
		t.Errorf("histogram projection sums to %s, KPI total is %s", histSum, view.KPIs.TotalSales)
	}

	// Daily sales must be strictly ascending with no duplicate dates and
	// must also sum to the KPI total.
	daily := view.Charts.SalesOverTime
	dailySum := decimal.Zero
	for i, row := range daily {
		dailySum = dailySum.Add(row.Sales)
		if i > 0 && !daily[i-1].Date.Before(row.Date) {
			t.Errorf("daily sales dates not strictly ascending at index %d", i)
		}
	}
	if !dailySum.Equal(view.KPIs.TotalSales) {
		t.Errorf("daily sales sum to %s, KPI total is %s", dailySum, view.KPIs.TotalSales)
	}

	// Projections carry one row per filtered record.
	if len(view.Charts.CategorySales) != len(view.Records) {
		t.Errorf("category projection has %d rows, view has %d", len(view.Charts.CategorySales), len(view.Records))
	}
	if len(view.Charts.Shipments) != len(view.Records) {
		t.Errorf("shipment projection has %d rows, view has %d", len(view.Charts.Shipments), len(view.Records))
	}
}

func TestComputeView_AverageSale(t *testing.T) {
	records := []models.Record{
		{OrderID: "O1", CustomerID: "C1", Region: "East", Category: "Food", OrderDate: date(2021, 1, 1), Sales: dec("10")},
		{OrderID: "O2", CustomerID: "C2", Region: "East", Category: "Food", OrderDate: date(2021, 1, 2), Sales: dec("20")},
	}
	ds := models.NewDataset(records)

	view := ComputeView(ds, AllOf(ds))

	if view.KPIs.AvgSale != 15 {
		t.Errorf("expected average sale 15, got %f", view.KPIs.AvgSale)
	}
}

func TestOptions(t *testing.T) {
	ds := testDataset()

	opts := Options(ds)

	wantRegions := []string{"East", "West"}
	if len(opts.Regions) != len(wantRegions) {
		t.Fatalf("expected %d regions, got %d", len(wantRegions), len(opts.Regions))
	}
	for i, r := range wantRegions {
		if opts.Regions[i] != r {
			t.Errorf("region %d: expected %s, got %s", i, r, opts.Regions[i])
		}
	}

	if !opts.MinDate.Equal(date(2021, 1, 5)) || !opts.MaxDate.Equal(date(2021, 2, 1)) {
		t.Errorf("unexpected date bounds: %s .. %s", opts.MinDate, opts.MaxDate)
	}
}

func TestAllOf_SelectsEverything(t *testing.T) {
	ds := testDataset()

	view := ComputeView(ds, AllOf(ds))

	if len(view.Records) != ds.Len() {
		t.Errorf("default selection should keep all %d records, got %d", ds.Len(), len(view.Records))
	}
	if !view.KPIs.TotalSales.Equal(dec("35")) {
		t.Errorf("expected total sales 35, got %s", view.KPIs.TotalSales)
	}
}
