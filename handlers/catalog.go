package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"telaviva/models"
	"telaviva/services/catalog"
	"telaviva/utils/mediautil"
)

// CatalogHandler handles catalog-related HTTP requests.
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GetCategoryPage returns one shard of a category.
// GET /api/catalog/{category}/page/{page}
func (h *CatalogHandler) GetCategoryPage(w http.ResponseWriter, r *http.Request) {
	if h.catalogService == nil {
		http.Error(w, `{"error":"catalog service not available"}`, http.StatusServiceUnavailable)
		return
	}

	vars := mux.Vars(r)
	categoryID := vars["category"]
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		http.Error(w, `{"error":"invalid page"}`, http.StatusBadRequest)
		return
	}

	items := h.catalogService.FetchCategoryPage(r.Context(), categoryID, page)
	writeJSON(w, "catalog", items)
}

// LoadNext advances a category by one page and returns the consolidated list.
// POST /api/catalog/{category}/next
func (h *CatalogHandler) LoadNext(w http.ResponseWriter, r *http.Request) {
	if h.catalogService == nil {
		http.Error(w, `{"error":"catalog service not available"}`, http.StatusServiceUnavailable)
		return
	}

	categoryID := mux.Vars(r)["category"]
	items, hasMore := h.catalogService.LoadNextPage(r.Context(), categoryID)

	response := struct {
		Items   []models.MediaItem `json:"items"`
		HasMore bool               `json:"hasMore"`
	}{Items: items, HasMore: hasMore}
	writeJSON(w, "catalog", response)
}

// Search matches loaded items against a query string.
// GET /api/catalog/search?q=...&type=...&genre=...&year=...&sort=...
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.catalogService == nil {
		http.Error(w, `{"error":"catalog service not available"}`, http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, `{"error":"missing q parameter"}`, http.StatusBadRequest)
		return
	}

	items := h.catalogService.SearchInLoadedData(query)
	items = mediautil.Deduplicate(items)
	items = mediautil.Filter(items, mediautil.FilterOptions{
		Type:  r.URL.Query().Get("type"),
		Genre: r.URL.Query().Get("genre"),
		Year:  r.URL.Query().Get("year"),
	})
	if key := r.URL.Query().Get("sort"); key != "" {
		items = mediautil.Sort(items, mediautil.SortKey(key))
	}
	writeJSON(w, "catalog", items)
}

// GetFacets returns the filterable genres and years over loaded items.
// GET /api/catalog/facets
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	if h.catalogService == nil {
		http.Error(w, `{"error":"catalog service not available"}`, http.StatusServiceUnavailable)
		return
	}

	var all []models.MediaItem
	for _, items := range h.catalogService.GetAllLoadedCategories() {
		all = append(all, items...)
	}

	response := struct {
		Genres []string `json:"genres"`
		Years  []string `json:"years"`
	}{
		Genres: mediautil.AllGenres(all),
		Years:  mediautil.AllYears(all),
	}
	writeJSON(w, "catalog", response)
}

// GetStatus returns the catalog loading status.
// GET /api/catalog/status
func (h *CatalogHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h.catalogService == nil {
		http.Error(w, `{"error":"catalog service not available"}`, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, "catalog", h.catalogService.Status())
}

// ClearCaches wipes the in-memory catalog state.
// POST /api/catalog/clear
func (h *CatalogHandler) ClearCaches(w http.ResponseWriter, r *http.Request) {
	if h.catalogService == nil {
		http.Error(w, `{"error":"catalog service not available"}`, http.StatusServiceUnavailable)
		return
	}
	h.catalogService.ClearAllCaches()
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"cleared"}`))
}

// Options handles CORS preflight requests.
func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// writeJSON encodes v with the shared handler conventions.
func writeJSON(w http.ResponseWriter, component string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[%s] JSON encode error: %v", component, err)
	}
}
