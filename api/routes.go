package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"telaviva/handlers"
)

// corsMiddleware handles CORS for API routes.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the API router over the three engine services.
func NewRouter(catalogH *handlers.CatalogHandler, epgH *handlers.EPGHandler, trendingH *handlers.TrendingHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	// Catalog
	r.HandleFunc("/api/catalog/search", catalogH.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/facets", catalogH.GetFacets).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/status", catalogH.GetStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/clear", catalogH.ClearCaches).Methods(http.MethodPost)
	r.HandleFunc("/api/catalog/{category}/page/{page}", catalogH.GetCategoryPage).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/{category}/next", catalogH.LoadNext).Methods(http.MethodPost)
	r.PathPrefix("/api/catalog").HandlerFunc(catalogH.Options).Methods(http.MethodOptions)

	// EPG
	r.HandleFunc("/api/epg/channels", epgH.GetChannels).Methods(http.MethodGet)
	r.HandleFunc("/api/epg/now", epgH.GetNowPlaying).Methods(http.MethodGet)
	r.HandleFunc("/api/epg/status", epgH.GetStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/epg/channel/{id}", epgH.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/api/epg/channel/{id}/refresh", epgH.Refresh).Methods(http.MethodPost)
	r.PathPrefix("/api/epg").HandlerFunc(epgH.Options).Methods(http.MethodOptions)

	// Trending
	r.HandleFunc("/api/trending/today", trendingH.GetToday).Methods(http.MethodGet)
	r.HandleFunc("/api/trending/week", trendingH.GetWeek).Methods(http.MethodGet)
	r.HandleFunc("/api/trending/clear", trendingH.Clear).Methods(http.MethodPost)
	r.PathPrefix("/api/trending").HandlerFunc(trendingH.Options).Methods(http.MethodOptions)

	return r
}
