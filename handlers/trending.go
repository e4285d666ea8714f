package handlers

import (
	"net/http"

	"telaviva/services/trending"
)

// TrendingHandler handles trending overlay HTTP requests.
type TrendingHandler struct {
	trendingService *trending.Service
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(trendingService *trending.Service) *TrendingHandler {
	return &TrendingHandler{
		trendingService: trendingService,
	}
}

// GetToday returns today's trending items resolved against the catalog.
// GET /api/trending/today
func (h *TrendingHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	if h.trendingService == nil {
		http.Error(w, `{"error":"trending service not available"}`, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, "trending", h.trendingService.GetTrendingToday(r.Context()))
}

// GetWeek returns this week's trending items resolved against the catalog.
// GET /api/trending/week
func (h *TrendingHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	if h.trendingService == nil {
		http.Error(w, `{"error":"trending service not available"}`, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, "trending", h.trendingService.GetTrendingWeek(r.Context()))
}

// Clear expires both trending slots.
// POST /api/trending/clear
func (h *TrendingHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.trendingService == nil {
		http.Error(w, `{"error":"trending service not available"}`, http.StatusServiceUnavailable)
		return
	}
	h.trendingService.ClearCache()
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"cleared"}`))
}

// Options handles CORS preflight requests.
func (h *TrendingHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
