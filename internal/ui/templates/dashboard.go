package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"sales-dashboard/internal/services"

	"github.com/a-h/templ"
)

const dateLayout = "2006-01-02"

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Supermarket Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { background-color: #0e1117; color: #fff; font-family: sans-serif; margin: 0; }
h1, h2 { color: #f8f9fa; }
.layout { display: flex; }
.sidebar { width: 280px; padding: 20px; background: #161b22; min-height: 100vh; }
.sidebar label { display: block; margin: 14px 0 4px; font-weight: bold; }
.sidebar select, .sidebar input { width: 100%; background: #0e1117; color: #fff; border: 1px solid #30363d; border-radius: 6px; padding: 6px; }
.content { flex: 1; padding: 20px 40px; }
.kpi-row { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; }
.kpi-box { background: linear-gradient(135deg, #1f4037, #99f2c8); padding: 20px; border-radius: 15px; text-align: center; color: #000; font-weight: bold; }
.charts-grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 16px; margin-top: 24px; }
.charts-grid img { width: 100%; border-radius: 8px; background: #fff; }
.row-count { margin-top: 16px; color: #8b949e; }
</style>
</head>
<body data-signals='{{.Signals}}' data-on-load="@get('/sse/refresh')">
<div class="layout">
<aside class="sidebar" data-on-change="@get('/sse/refresh')">
<h2>🔎 Filter Your Data</h2>
<label for="regions">Region</label>
<select id="regions" multiple size="{{len .Options.Regions}}" data-bind-regions>
{{range .Options.Regions}}<option value="{{.}}" selected>{{.}}</option>
{{end}}</select>
<label for="categories">Category</label>
<select id="categories" multiple size="{{len .Options.Categories}}" data-bind-categories>
{{range .Options.Categories}}<option value="{{.}}" selected>{{.}}</option>
{{end}}</select>
<label for="date-start">From</label>
<input id="date-start" type="date" data-bind-date-start value="{{.DateStart}}">
<label for="date-end">To</label>
<input id="date-end" type="date" data-bind-date-end value="{{.DateEnd}}">
</aside>
<main class="content">
<h1>🛒 Supermarket Sales Dashboard</h1>
<h2>📊 Sales Performance, Trends &amp; Customer Insights</h2>
<div id="kpi-row" class="kpi-row"></div>
<div class="row-count"><span data-text="$rowCount"></span> matching rows</div>
<div id="charts-grid" class="charts-grid"></div>
</main>
</div>
</body>
</html>`))

type pageData struct {
	Options   services.FilterOptions
	Signals   string
	DateStart string
	DateEnd   string
}

// Dashboard renders the page shell: sidebar widgets seeded with every
// region and category selected and the full date span, plus the empty KPI
// and chart containers the SSE refresh patches into.
func Dashboard(opts services.FilterOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(map[string]any{
			"regions":    opts.Regions,
			"categories": opts.Categories,
			"dateStart":  opts.MinDate.Format(dateLayout),
			"dateEnd":    opts.MaxDate.Format(dateLayout),
			"rowCount":   0,
		})
		if err != nil {
			return fmt.Errorf("marshal initial signals: %w", err)
		}

		return pageTemplate.Execute(w, pageData{
			Options:   opts,
			Signals:   string(signals),
			DateStart: opts.MinDate.Format(dateLayout),
			DateEnd:   opts.MaxDate.Format(dateLayout),
		})
	})
}
