package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Catalog  CatalogSettings  `json:"catalog"`
	EPG      EPGSettings      `json:"epg"`
	Trending TrendingSettings `json:"trending"`
	Cache    CacheSettings    `json:"cache"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CategoryConfig describes one fixed catalog category. The list is static
// configuration; it is never mutated at runtime.
type CategoryConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CatalogSettings struct {
	BaseURL string `json:"baseUrl"`
	// ShardSize is the expected number of items per remote shard. A page
	// smaller than this marks the category as exhausted. Tuning constant,
	// not a protocol guarantee.
	ShardSize           int              `json:"shardSize"`
	PageCacheTTLSeconds int              `json:"pageCacheTtlSeconds"`
	YieldDelayMs        int              `json:"yieldDelayMs"` // pause between background page fetches
	Categories          []CategoryConfig `json:"categories"`
}

type EPGSettings struct {
	ChannelsFile           string `json:"channelsFile"`
	RefreshIntervalMinutes int    `json:"refreshIntervalMinutes"`
	PrefetchRadius         int    `json:"prefetchRadius"`
	PrefetchDelayMs        int    `json:"prefetchDelayMs"`
	FallbackGraceSeconds   int    `json:"fallbackGraceSeconds"`
}

type TrendingSettings struct {
	APIKey     string `json:"apiKey"`
	BaseURL    string `json:"baseUrl"`
	TTLMinutes int    `json:"ttlMinutes"`
	Pages      int    `json:"pages"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// PageCacheTTL returns the page-level cache TTL as a duration.
func (c CatalogSettings) PageCacheTTL() time.Duration {
	if c.PageCacheTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.PageCacheTTLSeconds) * time.Second
}

// YieldDelay returns the pause inserted between background page fetches.
func (c CatalogSettings) YieldDelay() time.Duration {
	if c.YieldDelayMs <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(c.YieldDelayMs) * time.Millisecond
}

// RefreshInterval returns how long a channel's cached schedule stays fresh.
func (e EPGSettings) RefreshInterval() time.Duration {
	if e.RefreshIntervalMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(e.RefreshIntervalMinutes) * time.Minute
}

// PrefetchDelay returns the delay between sequential windowed prefetches.
func (e EPGSettings) PrefetchDelay() time.Duration {
	if e.PrefetchDelayMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(e.PrefetchDelayMs) * time.Millisecond
}

// FallbackGrace returns the grace period before a guide row fetches its own
// channel's schedule.
func (e EPGSettings) FallbackGrace() time.Duration {
	if e.FallbackGraceSeconds <= 0 {
		return 8 * time.Second
	}
	return time.Duration(e.FallbackGraceSeconds) * time.Second
}

// TTL returns the trending cache TTL as a duration.
func (t TrendingSettings) TTL() time.Duration {
	if t.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(t.TTLMinutes) * time.Minute
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7878},
		Catalog: CatalogSettings{
			BaseURL:             "https://catalog.telaviva.app/v1",
			ShardSize:           50,
			PageCacheTTLSeconds: 60,
			YieldDelayMs:        50,
			Categories: []CategoryConfig{
				{ID: "lancamentos", Name: "Lançamentos"},
				{ID: "acao", Name: "Ação"},
				{ID: "comedia", Name: "Comédia"},
				{ID: "drama", Name: "Drama"},
				{ID: "terror", Name: "Terror"},
				{ID: "infantil", Name: "Infantil"},
				{ID: "series", Name: "Séries"},
				{ID: "documentarios", Name: "Documentários"},
			},
		},
		EPG: EPGSettings{
			ChannelsFile:           "config/channels.json",
			RefreshIntervalMinutes: 60,
			PrefetchRadius:         5,
			PrefetchDelayMs:        300,
			FallbackGraceSeconds:   8,
		},
		Trending: TrendingSettings{
			BaseURL:    "https://api.themoviedb.org/3",
			TTLMinutes: 30,
			Pages:      3,
		},
		Cache: CacheSettings{Directory: "cache"},
		Log: LogConfig{
			File:       "",
			Level:      "info",
			MaxSize:    10,
			MaxAge:     14,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&s); err != nil {
		return Settings{}, err
	}

	// Older installs predate the category list; re-seed rather than run with
	// an empty catalog.
	if len(s.Catalog.Categories) == 0 {
		s.Catalog.Categories = DefaultSettings().Catalog.Categories
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
