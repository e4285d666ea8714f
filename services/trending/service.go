package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"telaviva/config"
	"telaviva/models"
)

const defaultHTTPTimeout = 15 * time.Second

// ItemSource is the slice of the catalog the overlay needs: a snapshot of
// every loaded category. Implemented by the catalog service.
type ItemSource interface {
	GetAllLoadedCategories() map[string][]models.MediaItem
}

// Service fetches ranked external id lists from the trending API, caches
// them per period for a fixed TTL, and joins them against whatever the
// catalog currently holds.
type Service struct {
	cfg     config.TrendingSettings
	catalog ItemSource
	httpc   *http.Client

	mu    sync.Mutex
	slots map[string]*slot

	// now is swapped in tests.
	now func() time.Time
}

type slot struct {
	ids       []int64
	fetchedAt time.Time
}

// NewService creates a new trending service. httpc may be nil for a default
// client.
func NewService(cfg config.TrendingSettings, catalog ItemSource, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Service{
		cfg:     cfg,
		catalog: catalog,
		httpc:   httpc,
		slots:   make(map[string]*slot),
		now:     time.Now,
	}
}

// GetTrendingToday returns today's trending items resolved against the
// loaded catalog.
func (s *Service) GetTrendingToday(ctx context.Context) []models.MediaItem {
	return s.trending(ctx, "day")
}

// GetTrendingWeek returns this week's trending items resolved against the
// loaded catalog.
func (s *Service) GetTrendingWeek(ctx context.Context) []models.MediaItem {
	return s.trending(ctx, "week")
}

func (s *Service) trending(ctx context.Context, period string) []models.MediaItem {
	s.mu.Lock()
	cached := s.slots[period]
	if cached != nil && s.now().Sub(cached.fetchedAt) < s.cfg.TTL() {
		ids := append([]int64(nil), cached.ids...)
		s.mu.Unlock()
		return s.resolve(ids)
	}
	s.mu.Unlock()

	ids := s.fetchAllPages(ctx, period)
	if len(ids) == 0 {
		// Refresh failed; the stale slot stays so the next call retries.
		return nil
	}

	s.mu.Lock()
	s.slots[period] = &slot{ids: ids, fetchedAt: s.now()}
	s.mu.Unlock()

	return s.resolve(ids)
}

// fetchAllPages fetches the configured number of ranked pages in parallel
// and concatenates them in page order. Failed pages are skipped.
func (s *Service) fetchAllPages(ctx context.Context, period string) []int64 {
	pages := s.cfg.Pages
	if pages <= 0 {
		pages = 1
	}

	results := make([][]int64, pages)
	workers := pool.New().WithMaxGoroutines(pages)
	for i := 0; i < pages; i++ {
		page := i + 1
		idx := i
		workers.Go(func() {
			ids, err := s.fetchPage(ctx, period, page)
			if err != nil {
				log.Printf("[trending] page fetch failed period=%s page=%d: %v", period, page, err)
				return
			}
			results[idx] = ids
		})
	}
	workers.Wait()

	var all []int64
	for _, ids := range results {
		all = append(all, ids...)
	}
	return all
}

type trendingResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

func (s *Service) fetchPage(ctx context.Context, period string, page int) ([]int64, error) {
	endpoint, err := url.JoinPath(s.cfg.BaseURL, "trending", "all", period)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("api_key", s.cfg.APIKey)
	q.Set("page", fmt.Sprintf("%d", page))
	req.URL.RawQuery = q.Encode()

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending request failed: %s", resp.Status)
	}

	var payload trendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID != 0 {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// resolve joins the ranked external ids against currently loaded items only.
// Unmatched ids are dropped; a local item already resolved by an earlier id
// is not emitted again.
func (s *Service) resolve(ids []int64) []models.MediaItem {
	snapshot := s.catalog.GetAllLoadedCategories()

	byExternal := make(map[int64]models.MediaItem)
	for _, items := range snapshot {
		for _, item := range items {
			if item.Info == nil || item.Info.TMDBID == 0 {
				continue
			}
			if _, exists := byExternal[item.Info.TMDBID]; !exists {
				byExternal[item.Info.TMDBID] = item
			}
		}
	}

	var result []models.MediaItem
	seen := make(map[string]struct{})
	for _, id := range ids {
		item, ok := byExternal[id]
		if !ok {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		result = append(result, item)
	}
	return result
}

// ClearCache forces both period slots to be treated as expired on the next
// read.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.slots = make(map[string]*slot)
	s.mu.Unlock()
	log.Println("[trending] cache cleared")
}
