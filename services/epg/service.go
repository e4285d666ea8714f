package epg

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"telaviva/config"
	"telaviva/models"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	// Schedule sites block the Go default agent.
	scrapeUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Service handles per-channel schedule retrieval, caching, and fan-out
// notification. Schedules are fetched from scraped provider pages, cached in
// memory only, and replaced wholesale on each successful fetch.
type Service struct {
	cfg   config.EPGSettings
	httpc *http.Client

	mu      sync.RWMutex
	entries map[string]*scheduleEntry

	flightMu sync.Mutex
	flights  map[string]chan struct{}

	subMu sync.Mutex
	subs  map[string]func(channelID string)

	progressMu   sync.Mutex
	progressSubs map[string]func(fetched, total int)
	total        int
	fetched      int

	lastRefresh time.Time

	// now is swapped in tests.
	now func() time.Time
}

type scheduleEntry struct {
	programs  []models.Program
	fetchedAt time.Time
}

// NewService creates a new EPG service. httpc may be nil for a default
// client.
func NewService(cfg config.EPGSettings, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Service{
		cfg:          cfg,
		httpc:        httpc,
		entries:      make(map[string]*scheduleEntry),
		flights:      make(map[string]chan struct{}),
		subs:         make(map[string]func(string)),
		progressSubs: make(map[string]func(int, int)),
		now:          time.Now,
	}
}

// FetchChannelEPG ensures the channel's schedule is cached and fresh.
//
// It no-ops for channels with no source mapping and for channels whose cache
// entry is still within the refresh interval. Concurrent calls for the same
// channel share a single network round-trip; every caller returns once that
// round-trip resolves. On failure the previous cache entry is kept and no
// subscriber is notified.
func (s *Service) FetchChannelEPG(ctx context.Context, channelID string) {
	src, ok := SourceFor(channelID)
	if !ok {
		return
	}

	s.mu.RLock()
	entry := s.entries[channelID]
	s.mu.RUnlock()
	if entry != nil && s.now().Sub(entry.fetchedAt) < s.cfg.RefreshInterval() {
		return
	}

	s.flightMu.Lock()
	if done, inFlight := s.flights[channelID]; inFlight {
		s.flightMu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return
	}
	done := make(chan struct{})
	s.flights[channelID] = done
	s.flightMu.Unlock()

	// The in-flight marker must always clear, even when the fetch fails,
	// or the channel would be wedged for the rest of the session.
	defer func() {
		s.flightMu.Lock()
		delete(s.flights, channelID)
		s.flightMu.Unlock()
		close(done)
	}()

	programs, err := s.fetchPrograms(ctx, src)
	if err != nil {
		log.Printf("[epg] fetch failed channel=%s source=%s: %v", channelID, src, err)
		return
	}

	s.mu.Lock()
	s.entries[channelID] = &scheduleEntry{programs: programs, fetchedAt: s.now()}
	s.lastRefresh = s.now()
	s.mu.Unlock()

	s.notify(channelID)
	s.reportProgress()
}

// fetchPrograms retrieves and parses one provider page into an ordered
// program list. Unexpected markup is a fetch failure.
func (s *Service) fetchPrograms(ctx context.Context, src Source) ([]models.Program, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse provider page: %w", err)
	}

	base := s.now()
	var programs []models.Program
	switch src.Provider {
	case ProviderMeuGuia:
		programs, err = parseMeuGuia(root, src.Code, base)
	case ProviderMiTV:
		programs, err = parseMiTV(root, src.Code, base)
	case ProviderGatoTV:
		programs, err = parseGatoTV(root, src.Code, base)
	default:
		return nil, fmt.Errorf("unknown provider %q", src.Provider)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].Start.Before(programs[j].Start)
	})
	return programs, nil
}

// GetChannelEPG returns the cached program list for a channel. It never
// triggers a fetch.
func (s *Service) GetChannelEPG(channelID string) []models.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.entries[channelID]
	if entry == nil {
		return nil
	}
	return append([]models.Program(nil), entry.programs...)
}

// GetCurrentProgram derives the program containing "now", the one after it,
// and the elapsed progress, purely from cached data. Returns nil when no
// cached program spans now.
func (s *Service) GetCurrentProgram(channelID string) *models.NowPlaying {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.entries[channelID]
	if entry == nil {
		return nil
	}
	for i := range entry.programs {
		p := entry.programs[i]
		if p.Start.After(now) || !p.End.After(now) {
			continue
		}
		np := &models.NowPlaying{ChannelID: channelID, Current: &entry.programs[i]}
		if i+1 < len(entry.programs) {
			np.Next = &entry.programs[i+1]
		}
		total := p.End.Sub(p.Start)
		if total > 0 {
			progress := int(now.Sub(p.Start) * 100 / total)
			if progress < 0 {
				progress = 0
			}
			if progress > 100 {
				progress = 100
			}
			np.Progress = progress
		}
		return np
	}
	return nil
}

// OnUpdate registers a subscriber invoked with the channel id after every
// successful fetch, for every channel. Subscribers filter by channel id
// themselves. The returned function unsubscribes; calling it from inside the
// callback is safe.
func (s *Service) OnUpdate(fn func(channelID string)) (unsubscribe func()) {
	id := uuid.NewString()
	s.subMu.Lock()
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// notify invokes every subscriber synchronously. The registry is snapshotted
// under the lock first so a callback may unsubscribe (itself or others)
// without corrupting the iteration.
func (s *Service) notify(channelID string) {
	s.subMu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(channelID)
	}
}

// SetTotalChannels establishes the batch size for the coarse progress
// channel and resets the fetched counter.
func (s *Service) SetTotalChannels(n int) {
	s.progressMu.Lock()
	s.total = n
	s.fetched = 0
	s.progressMu.Unlock()
}

// OnProgress registers a coarse "N of M loaded" progress subscriber; it fires
// after every individual successful fetch. Returns an unsubscribe function.
func (s *Service) OnProgress(fn func(fetched, total int)) (unsubscribe func()) {
	id := uuid.NewString()
	s.progressMu.Lock()
	s.progressSubs[id] = fn
	s.progressMu.Unlock()

	return func() {
		s.progressMu.Lock()
		delete(s.progressSubs, id)
		s.progressMu.Unlock()
	}
}

func (s *Service) reportProgress() {
	s.progressMu.Lock()
	s.fetched++
	fetched, total := s.fetched, s.total
	fns := make([]func(int, int), 0, len(s.progressSubs))
	for _, fn := range s.progressSubs {
		fns = append(fns, fn)
	}
	s.progressMu.Unlock()

	for _, fn := range fns {
		fn(fetched, total)
	}
}

// PrefetchEPG fetches the given channels sequentially, stopping early when
// the context is cancelled. Used with SetTotalChannels/OnProgress by screens
// that show batch loading progress.
func (s *Service) PrefetchEPG(ctx context.Context, channelIDs []string) {
	for _, id := range channelIDs {
		if ctx.Err() != nil {
			return
		}
		s.FetchChannelEPG(ctx, id)
	}
}

// Status returns a snapshot of the EPG cache for the status endpoint.
func (s *Service) Status() models.EPGStatus {
	s.progressMu.Lock()
	fetched, total := s.fetched, s.total
	s.progressMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.EPGStatus{
		ChannelCount:  len(s.entries),
		TotalChannels: total,
		Fetched:       fetched,
	}
	for _, entry := range s.entries {
		status.ProgramCount += len(entry.programs)
	}
	if !s.lastRefresh.IsZero() {
		t := s.lastRefresh
		status.LastRefresh = &t
	}
	return status
}

// ClearCache drops every cached schedule. Source mappings and subscribers
// are unaffected.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.entries = make(map[string]*scheduleEntry)
	s.mu.Unlock()
	log.Println("[epg] schedule cache cleared")
}
