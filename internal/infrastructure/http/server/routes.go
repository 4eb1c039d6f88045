package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/http/middleware"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.healthHandler.HandleHealth())

	mux.HandleFunc("/checkouts/", s.handleCheckoutRoutes)
	mux.HandleFunc("/stock/available", s.stockHandler.HandleAvailableStock)
	mux.HandleFunc("/stock/reserve", s.stockHandler.HandleReserveStock)
	mux.HandleFunc("/admin/low-stock-check", s.stockHandler.HandleLowStockCheck)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)

	return handler
}

func (s *Server) handleCheckoutRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/checkouts/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] != "" {
		if r.Method == http.MethodGet {
			s.checkoutHandler.HandleStatus(w, r, parts[0])
			return
		}
	} else if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		if r.Method == http.MethodPost {
			s.checkoutHandler.HandleAction(w, r, parts[0], parts[1])
			return
		}
	}

	http.NotFound(w, r)
}
