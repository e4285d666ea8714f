package epg

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"telaviva/config"
	"telaviva/models"
)

func TestWindowOrder(t *testing.T) {
	tests := []struct {
		name   string
		active int
		radius int
		n      int
		want   []int
	}{
		{"middle", 5, 2, 10, []int{5, 6, 4, 7, 3}},
		{"top clamp", 0, 2, 10, []int{0, 1, 2}},
		{"bottom clamp", 9, 2, 10, []int{9, 8, 7}},
		{"radius beyond list", 1, 5, 3, []int{1, 2, 0}},
		{"zero radius", 4, 0, 10, []int{4}},
		{"active out of range", 42, 1, 3, []int{2, 1}},
		{"empty list", 0, 2, 0, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := windowOrder(tc.active, tc.radius, tc.n)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestStartWindowedPrefetchFetchesWindow(t *testing.T) {
	var requests atomic.Int32
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requests.Add(1)
		return htmlResponse(http.StatusOK, meuguiaFixture), nil
	})}
	s := NewService(testEPGSettings(), httpc)
	s.now = fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	channels := []models.Channel{
		{ID: "globo"}, {ID: "sbt"}, {ID: "record"}, {ID: "band"}, {ID: "cultura"},
	}
	cancel := s.StartWindowedPrefetch(context.Background(), channels, 2)
	defer cancel()

	deadline := time.After(2 * time.Second)
	for {
		// radius 2 around index 2 covers all five channels
		if s.Status().ChannelCount == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("window not fully fetched: %d channels", s.Status().ChannelCount)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStartWindowedPrefetchCancelStopsScheduling(t *testing.T) {
	fetchStarted := make(chan struct{}, 16)
	release := make(chan struct{})
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		fetchStarted <- struct{}{}
		<-release
		return htmlResponse(http.StatusOK, meuguiaFixture), nil
	})}

	cfg := testEPGSettings()
	cfg.PrefetchDelayMs = 1
	s := NewService(cfg, httpc)
	s.now = fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	channels := []models.Channel{{ID: "globo"}, {ID: "sbt"}, {ID: "record"}}
	cancel := s.StartWindowedPrefetch(context.Background(), channels, 0)

	// First fetch is in flight; cancelling must not abort it.
	<-fetchStarted
	cancel()
	close(release)

	deadline := time.After(2 * time.Second)
	for len(s.GetChannelEPG("globo")) == 0 {
		select {
		case <-deadline:
			t.Fatal("in-flight fetch was aborted by cancel")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// No further fetch was scheduled.
	select {
	case <-fetchStarted:
		t.Fatal("cancel did not stop scheduling")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEnsureChannelEPGSkipsCached(t *testing.T) {
	var requests atomic.Int32
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requests.Add(1)
		return htmlResponse(http.StatusOK, meuguiaFixture), nil
	})}
	cfg := config.EPGSettings{RefreshIntervalMinutes: 60, FallbackGraceSeconds: 1}
	s := NewService(cfg, httpc)
	s.now = fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	s.FetchChannelEPG(context.Background(), "globo")
	if requests.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", requests.Load())
	}

	// Cached channel: the fallback does nothing after the grace period.
	s.EnsureChannelEPG(context.Background(), "globo")
	if requests.Load() != 1 {
		t.Fatalf("fallback refetched a cached channel: %d requests", requests.Load())
	}

	// Uncached channel: the fallback fetches.
	s.EnsureChannelEPG(context.Background(), "sbt")
	if requests.Load() != 2 {
		t.Fatalf("fallback skipped an uncached channel: %d requests", requests.Load())
	}
}

func TestEnsureChannelEPGHonoursCancel(t *testing.T) {
	var requests atomic.Int32
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requests.Add(1)
		return htmlResponse(http.StatusOK, meuguiaFixture), nil
	})}
	cfg := config.EPGSettings{RefreshIntervalMinutes: 60, FallbackGraceSeconds: 30}
	s := NewService(cfg, httpc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.EnsureChannelEPG(ctx, "globo")
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancelled fallback did not return")
	}
	if requests.Load() != 0 {
		t.Fatalf("cancelled fallback fetched: %d requests", requests.Load())
	}
}
