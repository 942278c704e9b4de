package v1

import (
	"net/http"
)

// SetMarketRoutes sets up the public price API and system health routes
func SetMarketRoutes(router *http.ServeMux, priceHandler *PriceHandler, healthHandler *HealthHandler) {
	// Price Endpoints
	router.HandleFunc("GET /price", priceHandler.GetPrice) // primary instrument
	router.HandleFunc("GET /price/{metal}", priceHandler.GetPrice)

	// Scheduled/background recomputation (shared-secret protected)
	router.HandleFunc("POST /internal/refresh", priceHandler.Refresh)
	router.HandleFunc("POST /internal/refresh/{metal}", priceHandler.Refresh)

	// System Health Routes
	router.HandleFunc("GET /health", healthHandler.GetSystemHealth)
	router.HandleFunc("GET /health/detailed", healthHandler.GetDetailedHealth)
}
