// Command csvcheck validates a sales CSV with the same loader the
// dashboard uses and prints the dataset shape plus a KPI snapshot. A file
// that passes here will load at server startup; a file that fails prints
// the load error and exits non-zero so operators can fix it before
// deploying.
package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	path := os.Getenv("CSV_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: csvcheck <file.csv>")
		os.Exit(2)
	}

	ds, err := dataset.Load(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "csvcheck: %v\n", err)
		os.Exit(1)
	}

	minDate, maxDate := ds.DateBounds()

	shape := table.NewWriter()
	shape.SetTitle("Dataset")
	shape.AppendRows([]table.Row{
		{"File", path},
		{"Rows", ds.Len()},
		{"Regions", fmt.Sprintf("%d distinct", len(ds.Regions()))},
		{"Categories", fmt.Sprintf("%d distinct", len(ds.Categories()))},
		{"First order date", minDate.Format("2006-01-02")},
		{"Last order date", maxDate.Format("2006-01-02")},
	})
	shape.SetStyle(table.StyleDefault)
	fmt.Println(shape.Render())

	view := services.ComputeView(ds, services.AllOf(ds))

	avg := "n/a"
	if !math.IsNaN(view.KPIs.AvgSale) {
		avg = fmt.Sprintf("$%.2f", view.KPIs.AvgSale)
	}

	kpis := table.NewWriter()
	kpis.SetTitle("KPIs (unfiltered)")
	kpis.AppendHeader(table.Row{"Total Sales", "Orders", "Customers", "Avg Sale"})
	kpis.AppendRows([]table.Row{
		{"$" + view.KPIs.TotalSales.StringFixed(2), view.KPIs.OrderCount, view.KPIs.CustomerCount, avg},
	})
	kpis.SetStyle(table.StyleDefault)
	fmt.Println(kpis.Render())
}
