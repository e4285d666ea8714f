package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Catalog.Categories) == 0 {
		t.Fatal("defaults have no categories")
	}
	if s.Catalog.ShardSize != 50 {
		t.Fatalf("unexpected default shard size: %d", s.Catalog.ShardSize)
	}

	// The defaults were persisted.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file not created: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s := DefaultSettings()
	s.Server.Port = 9191
	s.EPG.RefreshIntervalMinutes = 15
	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Server.Port != 9191 {
		t.Fatalf("port not persisted: %d", got.Server.Port)
	}
	if got.EPG.RefreshIntervalMinutes != 15 {
		t.Fatalf("refresh interval not persisted: %d", got.EPG.RefreshIntervalMinutes)
	}
}

func TestLoadReseedsEmptyCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"catalog":{"categories":[]}}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	got, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Catalog.Categories) == 0 {
		t.Fatal("empty category list was not re-seeded")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{broken"), 0o644)

	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for malformed settings file")
	}
}

func TestDurationDefaults(t *testing.T) {
	var c CatalogSettings
	if c.PageCacheTTL() != 60*time.Second {
		t.Fatalf("unexpected page cache TTL default: %v", c.PageCacheTTL())
	}
	if c.YieldDelay() != 50*time.Millisecond {
		t.Fatalf("unexpected yield delay default: %v", c.YieldDelay())
	}

	var e EPGSettings
	if e.RefreshInterval() != 60*time.Minute {
		t.Fatalf("unexpected refresh interval default: %v", e.RefreshInterval())
	}
	if e.FallbackGrace() != 8*time.Second {
		t.Fatalf("unexpected fallback grace default: %v", e.FallbackGrace())
	}

	var tr TrendingSettings
	if tr.TTL() != 30*time.Minute {
		t.Fatalf("unexpected trending TTL default: %v", tr.TTL())
	}

	e.RefreshIntervalMinutes = 5
	if e.RefreshInterval() != 5*time.Minute {
		t.Fatalf("explicit refresh interval ignored: %v", e.RefreshInterval())
	}
}
