package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

type PriceHandler struct {
	priceService  port.PriceService
	refreshSecret string
}

func NewPriceHandler(priceService port.PriceService, refreshSecret string) *PriceHandler {
	return &PriceHandler{
		priceService:  priceService,
		refreshSecret: refreshSecret,
	}
}

// Response structures
type PriceResponse struct {
	PricePerGram            float64    `json:"pricePerGram"`
	PricePerTenGrams        float64    `json:"pricePerTenGrams"`
	PricePerKilogram        float64    `json:"pricePerKilogram"`
	PricePerTraditionalUnit float64    `json:"pricePerTraditionalUnit"`
	Currency                string     `json:"currency"`
	Timestamp               time.Time  `json:"timestamp"`
	Change24h               *float64   `json:"change24h,omitempty"`
	ChangePercent24h        *float64   `json:"changePercent24h,omitempty"`
	High24h                 *float64   `json:"high24h,omitempty"`
	Low24h                  *float64   `json:"low24h,omitempty"`
	Source                  string     `json:"source"`
	TodayHigh               *float64   `json:"todayHigh,omitempty"`
	TodayHighTime           *time.Time `json:"todayHighTime,omitempty"`
	TodayLow                *float64   `json:"todayLow,omitempty"`
	TodayLowTime            *time.Time `json:"todayLowTime,omitempty"`
	TodayOpen               *float64   `json:"todayOpen,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetPrice handles GET /price and GET /price/{metal}
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	instrument, ok := h.instrumentFromPath(w, r)
	if !ok {
		return
	}

	snapshot, err := h.priceService.GetPrice(r.Context(), instrument)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// Intermediate caches may serve this for one TTL and revalidate in
	// the background for roughly one more.
	ttl := h.priceService.TTLSeconds()
	w.Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", ttl, 2*ttl))

	h.writeJSONResponse(w, http.StatusOK, buildPriceResponse(snapshot))
}

// Refresh handles POST /internal/refresh/{metal}; meant for scheduled
// background invocations, guarded by a shared secret when configured.
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshSecret != "" {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+h.refreshSecret {
			h.writeErrorResponse(w, http.StatusUnauthorized, "missing or invalid refresh credential")
			return
		}
	}

	instrument, ok := h.instrumentFromPath(w, r)
	if !ok {
		return
	}

	snapshot, err := h.priceService.Refresh(r.Context(), instrument)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, buildPriceResponse(snapshot))
}

func (h *PriceHandler) instrumentFromPath(w http.ResponseWriter, r *http.Request) (domain.Instrument, bool) {
	metal := r.PathValue("metal")
	if metal == "" {
		// Bare /price serves the primary instrument.
		return domain.Silver, true
	}

	switch domain.Instrument(strings.ToLower(metal)) {
	case domain.Silver:
		return domain.Silver, true
	case domain.Gold:
		return domain.Gold, true
	default:
		h.writeErrorResponse(w, http.StatusBadRequest, "unsupported metal: "+metal)
		return "", false
	}
}

func buildPriceResponse(snapshot *domain.PriceSnapshot) PriceResponse {
	price := snapshot.Price
	resp := PriceResponse{
		PricePerGram:            f(price.PerGram),
		PricePerTenGrams:        f(price.PerTenGrams),
		PricePerKilogram:        f(price.PerKilogram),
		PricePerTraditionalUnit: f(price.PerTola),
		Currency:                price.Currency,
		Timestamp:               price.ComputedAt,
		Source:                  price.SourceQuote.Provider,
	}

	if snapshot.HasChange {
		resp.Change24h = fp(snapshot.Change24h)
		resp.ChangePercent24h = fp(snapshot.ChangePercent24h)
	}

	if ext := snapshot.Extremes; ext != nil {
		resp.High24h = fp(ext.High)
		resp.Low24h = fp(ext.Low)
		resp.TodayHigh = fp(ext.High)
		resp.TodayHighTime = &ext.HighAt
		resp.TodayLow = fp(ext.Low)
		resp.TodayLowTime = &ext.LowAt
		resp.TodayOpen = fp(ext.Open)
	}

	return resp
}

func f(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func fp(d decimal.Decimal) *float64 {
	v := f(d)
	return &v
}

func (h *PriceHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrNoData):
		h.writeErrorResponse(w, http.StatusServiceUnavailable, "price temporarily unavailable: "+err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		// Bad upstream data that slipped past the band checks: from
		// the consumer's view there is no trustworthy price right now.
		h.writeErrorResponse(w, http.StatusServiceUnavailable, "no trustworthy price available: "+err.Error())
	default:
		slog.Error("Unexpected failure serving price", "error", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *PriceHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *PriceHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.writeJSONResponse(w, statusCode, response)
}
