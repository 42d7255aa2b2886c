package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one sales transaction from the source file. Many records can
// share an OrderID (one order, several line items) and a CustomerID.
type Record struct {
	OrderID    string
	OrderDate  time.Time
	ShipDate   time.Time
	ShipMode   string
	CustomerID string
	Region     string
	Category   string
	PostalCode int
	Sales      decimal.Decimal
}

// Selection is one round of sidebar filter state: which regions and
// categories to keep, and the inclusive order-date interval. An empty
// Regions or Categories slice selects nothing; DateStart after DateEnd
// selects nothing. Neither case is an error.
type Selection struct {
	Regions    []string  `json:"regions"`
	Categories []string  `json:"categories"`
	DateStart  time.Time `json:"date_start"`
	DateEnd    time.Time `json:"date_end"`
}

// KPISummary holds the four headline numbers for a filtered view.
// AvgSale is NaN when the view is empty and marshals to JSON null.
type KPISummary struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	OrderCount    int             `json:"order_count"`
	CustomerCount int             `json:"customer_count"`
	AvgSale       float64         `json:"avg_sale"`
}

func (k KPISummary) MarshalJSON() ([]byte, error) {
	out := struct {
		TotalSales    decimal.Decimal `json:"total_sales"`
		OrderCount    int             `json:"order_count"`
		CustomerCount int             `json:"customer_count"`
		AvgSale       *float64        `json:"avg_sale"`
	}{
		TotalSales:    k.TotalSales,
		OrderCount:    k.OrderCount,
		CustomerCount: k.CustomerCount,
	}
	if !math.IsNaN(k.AvgSale) {
		out.AvgSale = &k.AvgSale
	}
	return json.Marshal(out)
}

// DailySales is one row of the sales-over-time chart table: every distinct
// order date in the view with that day's summed sales.
type DailySales struct {
	Date  time.Time       `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// CategorySale is one (Category, Sales) pair projected from the view.
type CategorySale struct {
	Category string          `json:"category"`
	Sales    decimal.Decimal `json:"sales"`
}

// ShipmentPoint is one (Sales, ShipMode, Region) triple projected from the
// view, shaped for the shipment scatter plot.
type ShipmentPoint struct {
	Sales    decimal.Decimal `json:"sales"`
	ShipMode string          `json:"ship_mode"`
	Region   string          `json:"region"`
}
