package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData means the filtered view produced an empty chart table; callers
// should answer with "nothing to draw" rather than an error page.
var ErrNoData = errors.New("no rows to chart")

const (
	chartWidth    = 1280
	chartHeight   = 720
	histogramBins = 20
)

// SalesTrend renders the sales-over-time table as a PNG line chart.
func SalesTrend(daily []models.DailySales) ([]byte, error) {
	if len(daily) == 0 {
		return nil, ErrNoData
	}

	// A time axis needs at least two distinct dates; a single day is
	// rendered as one bar instead.
	if len(daily) == 1 {
		bars := []chart.Value{{
			Value: daily[0].Sales.InexactFloat64(),
			Label: daily[0].Date.Format("2006-01-02"),
		}}
		return renderBars("Sales Trend Over Time", "Sales", bars)
	}

	xs := make([]time.Time, len(daily))
	ys := make([]float64, len(daily))
	maxY := 0.0
	for i, d := range daily {
		xs[i] = d.Date
		ys[i] = d.Sales.InexactFloat64()
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}

	graph := chart.Chart{
		Title:      "Sales Trend Over Time",
		Background: chart.Style{FillColor: drawing.ColorWhite},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Name:  "Sales",
			Range: yRange(maxY),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Sales",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	return render(&graph)
}

// CategorySales renders the (Category, Sales) projection as a PNG bar
// chart, one bar per category with that category's summed sales.
func CategorySales(rows []models.CategorySale) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, row := range rows {
		if _, seen := totals[row.Category]; !seen {
			order = append(order, row.Category)
		}
		totals[row.Category] = totals[row.Category].Add(row.Sales)
	}

	bars := make([]chart.Value, 0, len(order))
	for _, category := range order {
		bars = append(bars, chart.Value{
			Value: totals[category].InexactFloat64(),
			Label: category,
		})
	}

	return renderBars("Sales by Category", "Sales", bars)
}

// SalesHistogram renders the raw sales column as a PNG histogram with
// equal-width bins.
func SalesHistogram(values []decimal.Decimal) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	floats := make([]float64, len(values))
	minV, maxV := values[0].InexactFloat64(), values[0].InexactFloat64()
	for i, v := range values {
		floats[i] = v.InexactFloat64()
		if floats[i] < minV {
			minV = floats[i]
		}
		if floats[i] > maxV {
			maxV = floats[i]
		}
	}

	bins := histogramBins
	width := (maxV - minV) / float64(bins)
	if width == 0 {
		// All values identical: one bin holds everything.
		bins = 1
		width = 1
	}

	counts := make([]int, bins)
	for _, v := range floats {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	bars := make([]chart.Value, bins)
	for i, count := range counts {
		lo := minV + float64(i)*width
		bars[i] = chart.Value{
			Value: float64(count),
			Label: fmt.Sprintf("%.0f-%.0f", lo, lo+width),
		}
	}

	return renderBars("Sales Distribution", "Frequency", bars)
}

// Shipments renders the (Sales, ShipMode, Region) projection as a PNG
// scatter plot: sales on X, ship mode as a categorical band on Y, one
// colored series per region.
func Shipments(points []models.ShipmentPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	modeIndex := make(map[string]int)
	var modes []string
	regionPoints := make(map[string][]models.ShipmentPoint)
	var regions []string
	maxX := 0.0

	for _, p := range points {
		if _, seen := modeIndex[p.ShipMode]; !seen {
			modeIndex[p.ShipMode] = len(modes)
			modes = append(modes, p.ShipMode)
		}
		if _, seen := regionPoints[p.Region]; !seen {
			regions = append(regions, p.Region)
		}
		regionPoints[p.Region] = append(regionPoints[p.Region], p)
		if v := p.Sales.InexactFloat64(); v > maxX {
			maxX = v
		}
	}

	ticks := make([]chart.Tick, len(modes))
	for i, mode := range modes {
		ticks[i] = chart.Tick{Value: float64(i), Label: mode}
	}

	series := make([]chart.Series, 0, len(regions))
	for i, region := range regions {
		pts := regionPoints[region]
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for j, p := range pts {
			xs[j] = p.Sales.InexactFloat64()
			ys[j] = float64(modeIndex[p.ShipMode])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    region,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    chart.GetDefaultColor(i),
			},
		})
	}

	if maxX <= 0 {
		maxX = 1
	}

	graph := chart.Chart{
		Title:      "Sales vs Ship Mode",
		Background: chart.Style{FillColor: drawing.ColorWhite},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis: chart.XAxis{
			Name:  "Sales",
			Range: &chart.ContinuousRange{Min: 0, Max: maxX * 1.1},
		},
		YAxis: chart.YAxis{
			Name:  "Ship Mode",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(modes)) - 0.5},
		},
		Series: series,
	}

	return render(&graph)
}

func renderBars(title, yName string, bars []chart.Value) ([]byte, error) {
	maxY := 0.0
	for _, bar := range bars {
		if bar.Value > maxY {
			maxY = bar.Value
		}
	}

	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{FillColor: drawing.ColorWhite},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   30,
		BarSpacing: 10,
		Bars:       bars,
		YAxis: chart.YAxis{
			Name:  yName,
			Range: yRange(maxY),
		},
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return buf.Bytes(), nil
}

func render(graph *chart.Chart) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", graph.Title, err)
	}
	return buf.Bytes(), nil
}

// yRange pads the value axis so a flat series still has a drawable range.
func yRange(maxY float64) *chart.ContinuousRange {
	if maxY <= 0 {
		maxY = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxY * 1.1}
}
