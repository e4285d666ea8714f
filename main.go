package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"telaviva/api"
	"telaviva/config"
	"telaviva/handlers"
	"telaviva/services/catalog"
	"telaviva/services/epg"
	"telaviva/services/trending"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	noPreload := flag.Bool("no-preload", false, "skip background catalog loading at startup")
	flag.Parse()

	fmt.Println("telaviva sync engine starting...")

	configPath := os.Getenv("TELAVIVA_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Services
	store := catalog.NewStore(afero.NewOsFs(), filepath.Join(settings.Cache.Directory, "catalog"))
	catalogService := catalog.NewService(settings.Catalog, store, nil)
	epgService := epg.NewService(settings.EPG, nil)
	trendingService := trending.NewService(settings.Trending, catalogService, nil)
	channels := epg.LoadChannels(settings.EPG.ChannelsFile)

	// Warm-start from the previous session before anything hits the network.
	catalogService.HydrateFromDisk()
	log.Printf("[main] hydrated %d items from disk", catalogService.GetTotalLoadedCount())

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if !*noPreload {
		catalogService.StartBackgroundLoading(bgCtx, func(categoryID string, total int) {
			log.Printf("[main] catalog progress category=%s total=%d", categoryID, total)
		})
	}

	// Router
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	epgHandler := handlers.NewEPGHandler(epgService, channels)
	trendingHandler := handlers.NewTrendingHandler(trendingService)
	r := api.NewRouter(catalogHandler, epgHandler, trendingHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	catalogService.StopLoading()
	bgCancel()

	// Snapshot the catalog so the next session can hydrate without network.
	if err := catalogService.Persist(); err != nil {
		log.Printf("catalog persist error: %v", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
