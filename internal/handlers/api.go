package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	dateParamLayout = "2006-01-02"
	cacheMaxAge     = "public, max-age=300"
)

type APIHandlers struct {
	store  *dataset.Store
	logger *slog.Logger
}

func NewAPIHandlers(store *dataset.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		logger: logger,
	}
}

// dataset fetches the memoized Dataset, writing the error response itself
// when the source file is gone and nothing was ever loaded.
func (h *APIHandlers) dataset(w http.ResponseWriter, r *http.Request) (*models.Dataset, bool) {
	ds, err := h.store.Dataset(r.Context())
	if err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.ServiceUnavailableWrap(err, "dataset is not available"), requestID)
		return nil, false
	}
	return ds, true
}

// selectionFromQuery builds the filter selection for a request. Absent
// region/category parameters default to all values and absent dates to the
// dataset's bounds (the widgets' initial state); a present-but-empty set
// parameter is an explicit empty selection and yields an empty view.
func selectionFromQuery(q url.Values, ds *models.Dataset) (models.Selection, error) {
	sel := services.AllOf(ds)

	if q.Has("regions") {
		sel.Regions = splitList(q.Get("regions"))
	}
	if q.Has("categories") {
		sel.Categories = splitList(q.Get("categories"))
	}
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return sel, errors.BadRequestWrap(err, "invalid start date, want YYYY-MM-DD")
		}
		sel.DateStart = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return sel, errors.BadRequestWrap(err, "invalid end date, want YYYY-MM-DD")
		}
		sel.DateEnd = t
	}

	return sel, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// view recomputes the filtered view for the request's filter parameters.
func (h *APIHandlers) view(w http.ResponseWriter, r *http.Request) (services.View, bool) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return services.View{}, false
	}

	sel, err := selectionFromQuery(r.URL.Query(), ds)
	if err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, err, requestID)
		return services.View{}, false
	}

	return services.ComputeView(ds, sel), true
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, services.Options(ds), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

type viewResponse struct {
	RowCount int                  `json:"row_count"`
	KPIs     models.KPISummary    `json:"kpis"`
	Charts   services.ChartTables `json:"charts"`
}

func (h *APIHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	errors.WriteSuccess(w, viewResponse{
		RowCount: len(view.Records),
		KPIs:     view.KPIs,
		Charts:   view.Charts,
	})
}

func (h *APIHandlers) HandleSalesOverTime(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, view.Charts.SalesOverTime)
}

func (h *APIHandlers) HandleCategorySales(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, view.Charts.CategorySales)
}

func (h *APIHandlers) HandleSalesDistribution(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, view.Charts.SalesValues)
}

func (h *APIHandlers) HandleShipments(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, view.Charts.Shipments)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Stats())
}

// HandleInvalidate drops the memoized dataset; the next request re-reads
// the source file.
func (h *APIHandlers) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	h.store.Invalidate()
	h.logger.Info("dataset cache invalidated")
	errors.WriteSuccess(w, map[string]string{"status": "invalidated"})
}
