package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mozillazg/go-unidecode"

	"telaviva/config"
	"telaviva/models"
)

const defaultHTTPTimeout = 20 * time.Second

// Service is the single source of truth for which media items have been
// loaded and from where. It owns per-category page state, the consolidated
// in-memory item lists, and the background loading loop.
//
// Fetch operations never return an error to the caller: a failed or
// malformed shard degrades to an empty page and leaves prior state intact.
type Service struct {
	cfg   config.CatalogSettings
	store *Store
	httpc *http.Client

	mu       sync.RWMutex
	items    map[string][]models.MediaItem
	seen     map[string]map[string]struct{}
	lastPage map[string]int
	hasMore  map[string]bool
	hydrated map[string]bool

	pageMu    sync.Mutex
	pageCache map[string]pageEntry

	loadMu     sync.Mutex
	loading    bool
	loadCancel context.CancelFunc
	loadDone   chan struct{}
}

type pageEntry struct {
	items     []models.MediaItem
	fetchedAt time.Time
}

// ProgressFunc is invoked after every page merged by the background loader.
type ProgressFunc func(categoryID string, totalLoaded int)

// NewService creates a new catalog service. store may be nil to disable
// disk hydration. httpc may be nil for a default client.
func NewService(cfg config.CatalogSettings, store *Store, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultHTTPTimeout}
	}
	s := &Service{
		cfg:   cfg,
		store: store,
		httpc: httpc,
	}
	s.resetLocked()
	return s
}

// resetLocked reinitializes all cache state. Callers must hold mu (or be the
// constructor, before the service is shared).
func (s *Service) resetLocked() {
	s.items = make(map[string][]models.MediaItem)
	s.seen = make(map[string]map[string]struct{})
	s.lastPage = make(map[string]int)
	s.hasMore = make(map[string]bool)
	s.hydrated = make(map[string]bool)
	for _, cat := range s.cfg.Categories {
		s.hasMore[cat.ID] = true
	}
}

func (s *Service) knownCategory(categoryID string) bool {
	for _, cat := range s.cfg.Categories {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

// FetchCategoryPage returns the items of one remote shard, fetching it if the
// short-lived page cache does not hold it. Newly seen items are appended to
// the category's consolidated list. Any failure returns an empty slice and
// leaves the has-more flag untouched.
func (s *Service) FetchCategoryPage(ctx context.Context, categoryID string, page int) []models.MediaItem {
	if page < 1 || !s.knownCategory(categoryID) {
		log.Printf("[catalog] ignoring fetch for unknown category %q page %d", categoryID, page)
		return nil
	}

	key := fmt.Sprintf("%s/%d", categoryID, page)
	s.pageMu.Lock()
	if entry, ok := s.pageCache[key]; ok && time.Since(entry.fetchedAt) < s.cfg.PageCacheTTL() {
		s.pageMu.Unlock()
		return append([]models.MediaItem(nil), entry.items...)
	}
	s.pageMu.Unlock()

	shard, err := s.fetchShard(ctx, categoryID, page)
	if err != nil {
		log.Printf("[catalog] shard fetch failed category=%s page=%d: %v", categoryID, page, err)
		return nil
	}

	// Results arriving after cancellation are discarded without touching
	// shared state.
	if ctx.Err() != nil {
		return nil
	}

	s.mergePage(categoryID, page, shard)

	s.pageMu.Lock()
	if s.pageCache == nil {
		s.pageCache = make(map[string]pageEntry)
	}
	s.pageCache[key] = pageEntry{items: shard, fetchedAt: time.Now()}
	s.pageMu.Unlock()

	return append([]models.MediaItem(nil), shard...)
}

// fetchShard retrieves one JSON shard from the remote catalog store.
func (s *Service) fetchShard(ctx context.Context, categoryID string, page int) ([]models.MediaItem, error) {
	endpoint := fmt.Sprintf("%s/%s/page-%d.json", strings.TrimRight(s.cfg.BaseURL, "/"), categoryID, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shard fetch returned status %d", resp.StatusCode)
	}

	var shard []models.MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&shard); err != nil {
		return nil, fmt.Errorf("decode shard: %w", err)
	}
	return shard, nil
}

// mergePage appends the shard's unseen items to the consolidated list and
// advances the category's page state. Re-merging an already-held page is a
// no-op beyond the page cache refresh done by the caller.
func (s *Service) mergePage(categoryID string, page int, shard []models.MediaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.seen[categoryID]
	if ids == nil {
		ids = make(map[string]struct{})
		s.seen[categoryID] = ids
	}
	for _, item := range shard {
		if item.ID == "" {
			continue
		}
		if _, dup := ids[item.ID]; dup {
			continue
		}
		ids[item.ID] = struct{}{}
		s.items[categoryID] = append(s.items[categoryID], item)
	}

	if page > s.lastPage[categoryID] {
		s.lastPage[categoryID] = page
		s.hasMore[categoryID] = len(shard) >= s.cfg.ShardSize && len(shard) > 0
	}
}

// LoadNextPage fetches the next unfetched page for a category and returns the
// consolidated list plus the has-more flag. When the category is exhausted it
// returns the current state without any network access.
func (s *Service) LoadNextPage(ctx context.Context, categoryID string) ([]models.MediaItem, bool) {
	s.mu.RLock()
	more := s.hasMore[categoryID]
	next := s.lastPage[categoryID] + 1
	s.mu.RUnlock()

	if more {
		s.FetchCategoryPage(ctx, categoryID, next)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MediaItem(nil), s.items[categoryID]...), s.hasMore[categoryID]
}

// StartBackgroundLoading begins filling every category one page at a time in
// a round-robin over the configured category order. Calling it while a run is
// active joins the existing run instead of starting a second one.
func (s *Service) StartBackgroundLoading(ctx context.Context, onProgress ProgressFunc) {
	s.loadMu.Lock()
	if s.loading {
		s.loadMu.Unlock()
		log.Println("[catalog] background loading already running, joining existing run")
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.loading = true
	s.loadCancel = cancel
	s.loadDone = make(chan struct{})
	done := s.loadDone
	s.loadMu.Unlock()

	go func() {
		defer func() {
			s.loadMu.Lock()
			s.loading = false
			s.loadCancel = nil
			s.loadMu.Unlock()
			close(done)
		}()
		s.runBackgroundLoading(runCtx, onProgress)
	}()
}

// StopLoading cancels a background loading run. Cancellation is cooperative:
// an in-flight shard fetch finishes on its own and its result is discarded.
func (s *Service) StopLoading() {
	s.loadMu.Lock()
	cancel := s.loadCancel
	s.loadMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// WaitForLoading blocks until the current background run ends, for callers
// that want a full catalog before proceeding. Returns immediately when no
// run is active.
func (s *Service) WaitForLoading() {
	s.loadMu.Lock()
	done := s.loadDone
	loading := s.loading
	s.loadMu.Unlock()
	if loading && done != nil {
		<-done
	}
}

func (s *Service) runBackgroundLoading(ctx context.Context, onProgress ProgressFunc) {
	log.Printf("[catalog] background loading started for %d categories", len(s.cfg.Categories))

	for {
		advanced := false
		for _, cat := range s.cfg.Categories {
			if ctx.Err() != nil {
				log.Println("[catalog] background loading cancelled")
				return
			}

			s.mu.RLock()
			more := s.hasMore[cat.ID]
			next := s.lastPage[cat.ID] + 1
			s.mu.RUnlock()
			if !more {
				continue
			}

			merged := s.FetchCategoryPage(ctx, cat.ID, next)
			if len(merged) > 0 {
				advanced = true
				if onProgress != nil {
					onProgress(cat.ID, s.GetTotalLoadedCount())
				}
			}

			// Yield between categories so one pass never monopolizes the
			// process.
			select {
			case <-ctx.Done():
				log.Println("[catalog] background loading cancelled")
				return
			case <-time.After(s.cfg.YieldDelay()):
			}
		}

		s.mu.RLock()
		remaining := 0
		for _, cat := range s.cfg.Categories {
			if s.hasMore[cat.ID] {
				remaining++
			}
		}
		s.mu.RUnlock()

		if remaining == 0 {
			log.Printf("[catalog] background loading complete: %d items", s.GetTotalLoadedCount())
			return
		}
		// A pass that advanced nothing means every remaining category is
		// failing; stop instead of hammering the remote.
		if !advanced {
			log.Printf("[catalog] background loading stalled with %d categories remaining", remaining)
			return
		}
	}
}

// HydrateFromDisk warm-starts the consolidated lists from previously
// persisted blobs. Categories already hydrated or already populated from the
// network are skipped, so it is safe to call more than once per session.
func (s *Service) HydrateFromDisk() {
	if s.store == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cat := range s.cfg.Categories {
		if s.hydrated[cat.ID] || len(s.items[cat.ID]) > 0 {
			continue
		}
		s.hydrated[cat.ID] = true

		items, ok, err := s.store.Get(cat.ID)
		if err != nil || !ok {
			continue
		}
		ids := make(map[string]struct{}, len(items))
		kept := items[:0]
		for _, item := range items {
			if item.ID == "" {
				continue
			}
			if _, dup := ids[item.ID]; dup {
				continue
			}
			ids[item.ID] = struct{}{}
			kept = append(kept, item)
		}
		s.items[cat.ID] = kept
		s.seen[cat.ID] = ids
		log.Printf("[catalog] hydrated category %s with %d items", cat.ID, len(kept))
	}
}

// GetAllLoadedCategories returns a snapshot of every category's consolidated
// list. It never performs I/O.
func (s *Service) GetAllLoadedCategories() map[string][]models.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]models.MediaItem, len(s.items))
	for id, list := range s.items {
		result[id] = append([]models.MediaItem(nil), list...)
	}
	return result
}

// GetCategory returns the consolidated list and has-more flag for one
// category without any network access.
func (s *Service) GetCategory(categoryID string) ([]models.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MediaItem(nil), s.items[categoryID]...), s.hasMore[categoryID]
}

// GetTotalLoadedCount returns the number of items currently held in memory.
func (s *Service) GetTotalLoadedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, list := range s.items {
		total += len(list)
	}
	return total
}

// SearchInLoadedData performs an accent- and case-insensitive substring match
// over already-loaded items. It never blocks on unfetched data.
func (s *Service) SearchInLoadedData(query string) []models.MediaItem {
	needle := normalizeQuery(query)
	if needle == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.MediaItem
	matched := make(map[string]struct{})
	for _, cat := range s.cfg.Categories {
		for _, item := range s.items[cat.ID] {
			if _, dup := matched[item.ID]; dup {
				continue
			}
			if strings.Contains(normalizeQuery(item.Name), needle) ||
				(item.Info != nil && strings.Contains(normalizeQuery(item.Info.Title), needle)) {
				matched[item.ID] = struct{}{}
				result = append(result, item)
			}
		}
	}
	return result
}

// normalizeQuery lowercases and strips accents so "Ação" matches "acao".
func normalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// ClearAllCaches wipes all in-memory state, including the hydration markers,
// without touching remote or persisted state.
func (s *Service) ClearAllCaches() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.pageMu.Lock()
	s.pageCache = nil
	s.pageMu.Unlock()

	log.Println("[catalog] all caches cleared")
}

// Status returns a snapshot of the catalog state for the status endpoint.
func (s *Service) Status() models.CatalogStatus {
	s.loadMu.Lock()
	loading := s.loading
	s.loadMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.CatalogStatus{
		Loading:    loading,
		Categories: make(map[string]models.CategoryState, len(s.cfg.Categories)),
	}
	hydrated := len(s.hydrated) > 0
	for _, cat := range s.cfg.Categories {
		state := models.CategoryState{
			LastPage:  s.lastPage[cat.ID],
			HasMore:   s.hasMore[cat.ID],
			ItemCount: len(s.items[cat.ID]),
		}
		status.Categories[cat.ID] = state
		status.TotalItems += state.ItemCount
	}
	status.Hydrated = hydrated
	return status
}

// Persist writes every loaded category back to the blob store so the next
// session can hydrate without network access.
func (s *Service) Persist() error {
	if s.store == nil {
		return nil
	}
	snapshot := s.GetAllLoadedCategories()
	for id, items := range snapshot {
		if len(items) == 0 {
			continue
		}
		if err := s.store.Set(id, items); err != nil {
			return fmt.Errorf("persist category %s: %w", id, err)
		}
	}
	return nil
}
