package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

type HealthHandler struct {
	healthService port.HealthService
}

func NewHealthHandler(healthService port.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// GetSystemHealth handles GET /health
func (h *HealthHandler) GetSystemHealth(w http.ResponseWriter, r *http.Request) {
	status, err := h.healthService.GetSystemHealth(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to check system health: "+err.Error())
		return
	}

	statusCode := http.StatusOK
	if status.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(w, statusCode, status)
}

// GetDetailedHealth handles GET /health/detailed
func (h *HealthHandler) GetDetailedHealth(w http.ResponseWriter, r *http.Request) {
	status, err := h.healthService.GetDetailedHealth(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to check system health: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}

func (h *HealthHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *HealthHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
