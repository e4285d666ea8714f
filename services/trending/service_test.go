package trending

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"telaviva/config"
	"telaviva/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// fakeCatalog implements ItemSource with a fixed snapshot.
type fakeCatalog struct {
	categories map[string][]models.MediaItem
}

func (f *fakeCatalog) GetAllLoadedCategories() map[string][]models.MediaItem {
	return f.categories
}

func catalogWith(items ...models.MediaItem) *fakeCatalog {
	return &fakeCatalog{categories: map[string][]models.MediaItem{"acao": items}}
}

func enriched(localID string, externalID int64) models.MediaItem {
	return models.MediaItem{
		ID:   localID,
		Name: "Item " + localID,
		Info: &models.MediaInfo{TMDBID: externalID},
	}
}

// trendingAPI serves ranked id pages keyed by "period/page" and counts
// requests.
type trendingAPI struct {
	mu    sync.Mutex
	pages map[string][]int64
	hits  int
}

func (api *trendingAPI) transport() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		api.mu.Lock()
		defer api.mu.Unlock()
		api.hits++

		period := req.URL.Path[len("/trending/all/"):]
		key := fmt.Sprintf("%s/%s", period, req.URL.Query().Get("page"))
		ids, ok := api.pages[key]
		if !ok {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(bytes.NewReader(nil)),
				Header:     make(http.Header),
			}, nil
		}

		var payload trendingResponse
		for _, id := range ids {
			payload.Results = append(payload.Results, struct {
				ID int64 `json:"id"`
			}{ID: id})
		}
		body, _ := json.Marshal(payload)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})}
}

func (api *trendingAPI) hitCount() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.hits
}

func testTrendingSettings(pages int) config.TrendingSettings {
	return config.TrendingSettings{
		APIKey:     "test-key",
		BaseURL:    "https://trending.test",
		TTLMinutes: 30,
		Pages:      pages,
	}
}

func TestTrendingJoinKeepsRankOrder(t *testing.T) {
	api := &trendingAPI{pages: map[string][]int64{
		"day/1": {300, 100, 999, 200},
	}}
	catalog := catalogWith(
		enriched("a", 100),
		enriched("b", 200),
		enriched("c", 300),
	)
	svc := NewService(testTrendingSettings(1), catalog, api.transport())

	got := svc.GetTrendingToday(context.Background())
	if len(got) != 3 {
		t.Fatalf("expected 3 resolved items, got %d", len(got))
	}
	// Rank order wins over catalog order; the unmatched id 999 is dropped.
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, got[i].ID, i)
		}
	}
}

func TestTrendingConcatenatesPagesInOrder(t *testing.T) {
	api := &trendingAPI{pages: map[string][]int64{
		"day/1": {100},
		"day/2": {200},
		"day/3": {300},
	}}
	catalog := catalogWith(enriched("a", 100), enriched("b", 200), enriched("c", 300))
	svc := NewService(testTrendingSettings(3), catalog, api.transport())

	got := svc.GetTrendingToday(context.Background())
	want := []string{"a", "b", "c"}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, got[i].ID, i)
		}
	}
	if api.hitCount() != 3 {
		t.Fatalf("expected 3 page fetches, got %d", api.hitCount())
	}
}

func TestTrendingSkipsFailedPages(t *testing.T) {
	api := &trendingAPI{pages: map[string][]int64{
		"day/1": {100},
		// page 2 missing: 500
		"day/3": {300},
	}}
	catalog := catalogWith(enriched("a", 100), enriched("c", 300))
	svc := NewService(testTrendingSettings(3), catalog, api.transport())

	got := svc.GetTrendingToday(context.Background())
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("expected a,c with failed page skipped, got %+v", got)
	}
}

func TestTrendingSlotCaching(t *testing.T) {
	api := &trendingAPI{pages: map[string][]int64{
		"day/1":  {100},
		"week/1": {200},
	}}
	catalog := catalogWith(enriched("a", 100), enriched("b", 200))
	svc := NewService(testTrendingSettings(1), catalog, api.transport())
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	svc.GetTrendingToday(context.Background())
	svc.GetTrendingToday(context.Background())
	if api.hitCount() != 1 {
		t.Fatalf("expected 1 fetch for repeated reads, got %d", api.hitCount())
	}

	// The two periods cache independently.
	svc.GetTrendingWeek(context.Background())
	if api.hitCount() != 2 {
		t.Fatalf("expected 2 fetches after week read, got %d", api.hitCount())
	}

	// Past the TTL the slot refetches.
	svc.now = func() time.Time { return base.Add(31 * time.Minute) }
	svc.GetTrendingToday(context.Background())
	if api.hitCount() != 3 {
		t.Fatalf("expected refetch after TTL expiry, got %d fetches", api.hitCount())
	}
}

func TestTrendingFailedRefreshRetriesNextCall(t *testing.T) {
	api := &trendingAPI{pages: map[string][]int64{}} // everything 500s
	catalog := catalogWith(enriched("a", 100))
	svc := NewService(testTrendingSettings(1), catalog, api.transport())

	if got := svc.GetTrendingToday(context.Background()); got != nil {
		t.Fatalf("expected nil on failed refresh, got %+v", got)
	}

	// Failure did not populate a slot; the next call hits the network again.
	api.mu.Lock()
	api.pages["day/1"] = []int64{100}
	api.mu.Unlock()

	got := svc.GetTrendingToday(context.Background())
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected retry to succeed, got %+v", got)
	}
}

func TestTrendingResolveDropsDuplicateLocalItems(t *testing.T) {
	// Two external ids pointing at the same local item resolve once.
	item := enriched("a", 100)
	other := item
	other.Info = &models.MediaInfo{TMDBID: 200}
	api := &trendingAPI{pages: map[string][]int64{
		"day/1": {100, 200},
	}}
	catalog := catalogWith(item, other)
	svc := NewService(testTrendingSettings(1), catalog, api.transport())

	got := svc.GetTrendingToday(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected duplicate local item collapsed, got %d items", len(got))
	}
}

func TestTrendingClearCacheForcesRefetch(t *testing.T) {
	api := &trendingAPI{pages: map[string][]int64{
		"day/1": {100},
	}}
	catalog := catalogWith(enriched("a", 100))
	svc := NewService(testTrendingSettings(1), catalog, api.transport())

	svc.GetTrendingToday(context.Background())
	svc.ClearCache()
	svc.GetTrendingToday(context.Background())

	if api.hitCount() != 2 {
		t.Fatalf("expected refetch after clear, got %d fetches", api.hitCount())
	}
}
