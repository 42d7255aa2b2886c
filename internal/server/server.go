package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/handlers"
)

type Server struct {
	store         *dataset.Store
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	chartHandlers *handlers.ChartHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(store *dataset.Store, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		store:         store,
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(store, logger),
		sseHandlers:   handlers.NewSSEHandlers(store, logger),
		chartHandlers: handlers.NewChartHandlers(store, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/invalidate", s.apiHandlers.HandleInvalidate)

	// REST API endpoints; all accept regions/categories/start/end params
	s.mux.HandleFunc("GET /api/filters", s.apiHandlers.HandleFilters)
	s.mux.HandleFunc("GET /api/view", s.apiHandlers.HandleView)
	s.mux.HandleFunc("GET /api/sales-over-time", s.apiHandlers.HandleSalesOverTime)
	s.mux.HandleFunc("GET /api/category-sales", s.apiHandlers.HandleCategorySales)
	s.mux.HandleFunc("GET /api/sales-distribution", s.apiHandlers.HandleSalesDistribution)
	s.mux.HandleFunc("GET /api/shipments", s.apiHandlers.HandleShipments)

	// PNG chart snapshots
	s.mux.HandleFunc("GET /charts/sales-trend.png", s.chartHandlers.HandleSalesTrend)
	s.mux.HandleFunc("GET /charts/category-sales.png", s.chartHandlers.HandleCategorySales)
	s.mux.HandleFunc("GET /charts/sales-histogram.png", s.chartHandlers.HandleSalesHistogram)
	s.mux.HandleFunc("GET /charts/shipments.png", s.chartHandlers.HandleShipments)

	// Datastar SSE recompute loop
	s.mux.HandleFunc("GET /sse/refresh", s.sseHandlers.HandleRefresh)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
