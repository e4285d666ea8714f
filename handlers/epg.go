package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"telaviva/models"
	"telaviva/services/epg"
)

// EPGHandler handles EPG-related HTTP requests.
type EPGHandler struct {
	epgService *epg.Service
	channels   []models.Channel
}

// NewEPGHandler creates a new EPG handler.
func NewEPGHandler(epgService *epg.Service, channels []models.Channel) *EPGHandler {
	return &EPGHandler{
		epgService: epgService,
		channels:   channels,
	}
}

// GetChannels returns the static channel lineup.
// GET /api/epg/channels
func (h *EPGHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "epg", h.channels)
}

// GetNowPlaying returns current and next programs for specified channels.
// GET /api/epg/now?channels=ch1,ch2,ch3
func (h *EPGHandler) GetNowPlaying(w http.ResponseWriter, r *http.Request) {
	if h.epgService == nil {
		http.Error(w, `{"error":"EPG service not available"}`, http.StatusServiceUnavailable)
		return
	}

	channelsParam := r.URL.Query().Get("channels")
	if channelsParam == "" {
		http.Error(w, `{"error":"missing channels parameter"}`, http.StatusBadRequest)
		return
	}

	channelIDs := strings.Split(channelsParam, ",")
	result := make([]models.NowPlaying, 0, len(channelIDs))
	for _, id := range channelIDs {
		id = strings.TrimSpace(id)
		np := h.epgService.GetCurrentProgram(id)
		if np == nil {
			np = &models.NowPlaying{ChannelID: id}
		}
		result = append(result, *np)
	}

	writeJSON(w, "epg", result)
}

// GetSchedule returns the cached program list for a channel.
// GET /api/epg/channel/{id}
func (h *EPGHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if h.epgService == nil {
		http.Error(w, `{"error":"EPG service not available"}`, http.StatusServiceUnavailable)
		return
	}

	channelID := mux.Vars(r)["id"]
	programs := h.epgService.GetChannelEPG(channelID)

	response := struct {
		ChannelID string           `json:"channelId"`
		Programs  []models.Program `json:"programs"`
	}{ChannelID: channelID, Programs: programs}
	writeJSON(w, "epg", response)
}

// Refresh triggers a fetch for one channel in the background.
// POST /api/epg/channel/{id}/refresh
func (h *EPGHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.epgService == nil {
		http.Error(w, `{"error":"EPG service not available"}`, http.StatusServiceUnavailable)
		return
	}

	channelID := mux.Vars(r)["id"]

	// Run with an independent context so the fetch survives the HTTP
	// request ending.
	go h.epgService.FetchChannelEPG(context.WithoutCancel(r.Context()), channelID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"refresh started"}`))
}

// GetStatus returns the current EPG service status.
// GET /api/epg/status
func (h *EPGHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h.epgService == nil {
		http.Error(w, `{"error":"EPG service not available"}`, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, "epg", h.epgService.Status())
}

// Options handles CORS preflight requests.
func (h *EPGHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
