package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aivex/ai-visibility/app/api"
	"github.com/aivex/ai-visibility/app/cache"
	"github.com/aivex/ai-visibility/app/cfg"
	"github.com/aivex/ai-visibility/app/content"
	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/manifest"
	"github.com/aivex/ai-visibility/app/ratelimit"
	"github.com/aivex/ai-visibility/app/settings"
	"github.com/aivex/ai-visibility/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting AI Visibility server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	settingsStore := settings.NewStore(appCfg.SettingsFile)
	if err := settingsStore.Load(); err != nil {
		slog.Error("Failed to load settings", "error", err)
		os.Exit(1)
	}

	var sharedCache cache.Cache
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(appCfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", appCfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		sharedCache = redisCache
		slog.Info("Using Redis cache", "addr", appCfg.RedisAddr)
	} else {
		sharedCache = cache.NewMemory()
		slog.Info("Using in-process cache (rate limits are per-process)")
	}
	defer sharedCache.Close()

	// Core components
	repo := database.NewContentRepository(db)
	hooks := content.NewHooks()
	enricher := content.NewEnricher(hooks)
	limiter := ratelimit.NewLimiter(sharedCache)

	builder := manifest.NewBuilder(repo, enricher, settingsStore,
		appCfg.ManifestDir, collectionEndpoint(appCfg))
	builder.EnsureExists()

	scheduler := tasks.NewScheduler(builder, settingsStore)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(repo, sharedCache, enricher, hooks, limiter,
		settingsStore, builder, scheduler)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// collectionEndpoint resolves the public URL of the collection
// endpoint advertised inside the manifest.
func collectionEndpoint(appCfg *cfg.Cfg) string {
	base := strings.TrimRight(appCfg.BaseUrl, "/")
	if base == "" {
		base = "http://localhost:" + appCfg.Port
	}
	return base + "/ai-visibility/v1/content"
}
