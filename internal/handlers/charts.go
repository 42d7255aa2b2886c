package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

// ChartHandlers serve the four charts as PNG snapshots, recomputed from
// the request's filter parameters. An empty view answers 204.
type ChartHandlers struct {
	store  *dataset.Store
	logger *slog.Logger
}

func NewChartHandlers(store *dataset.Store, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		store:  store,
		logger: logger,
	}
}

func (h *ChartHandlers) HandleSalesTrend(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(v services.View) ([]byte, error) {
		return charts.SalesTrend(v.Charts.SalesOverTime)
	})
}

func (h *ChartHandlers) HandleCategorySales(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(v services.View) ([]byte, error) {
		return charts.CategorySales(v.Charts.CategorySales)
	})
}

func (h *ChartHandlers) HandleSalesHistogram(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(v services.View) ([]byte, error) {
		return charts.SalesHistogram(v.Charts.SalesValues)
	})
}

func (h *ChartHandlers) HandleShipments(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(v services.View) ([]byte, error) {
		return charts.Shipments(v.Charts.Shipments)
	})
}

func (h *ChartHandlers) serve(w http.ResponseWriter, r *http.Request, render func(services.View) ([]byte, error)) {
	requestID := observability.GetRequestID(r.Context())

	ds, err := h.store.Dataset(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger, errors.ServiceUnavailableWrap(err, "dataset is not available"), requestID)
		return
	}

	sel, err := selectionFromQuery(r.URL.Query(), ds)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	png, err := render(services.ComputeView(ds, sel))
	if stderrors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "chart rendering failed"), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheMaxAge)
	w.Write(png)
}
