package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/avrentals/backend/internal/api"
	"github.com/avrentals/backend/internal/config"
	"github.com/avrentals/backend/internal/database"
	"github.com/avrentals/backend/internal/metrics"
	"github.com/avrentals/backend/internal/provider"
	"github.com/avrentals/backend/internal/translation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var prov provider.Provider
	switch cfg.Provider {
	case "openai":
		prov = provider.NewOpenAI(provider.OpenAIConfig{
			Model:   cfg.OpenAIModel,
			Timeout: cfg.CallTimeout,
		})
	default:
		prov = provider.NewGemini(provider.GeminiConfig{
			Model:   cfg.GeminiModel,
			Timeout: cfg.CallTimeout,
		})
	}

	if len(cfg.APIKeys) == 0 {
		log.Println("Warning: no translation API keys configured, misses will fall back to source text")
	}
	var creds []translation.Credential
	for i, key := range cfg.APIKeys {
		creds = append(creds, translation.Credential{
			ID:     "key-" + strconv.Itoa(i+1),
			APIKey: key,
		})
	}

	limiter := translation.NewCredentialRateLimiter(creds, translation.CredentialLimits{
		MaxCallsPerWindow: cfg.MaxCallsPerWindow,
		WindowDuration:    cfg.WindowDuration,
		DefaultCooldown:   cfg.DefaultCooldown,
	})

	usage := translation.NewUsageRecorder(db)
	store := translation.NewStore(db, usage)
	cache := translation.NewMemoryCache()
	dispatcher := translation.NewBatchDispatcher(prov, limiter, store, cache, translation.DispatcherConfig{
		MaxChunkSize: cfg.MaxChunkSize,
		CallTimeout:  cfg.CallTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
	})
	gateway := translation.NewGateway(cache, store, dispatcher, cfg.SourceLang)

	if cfg.PreloadOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := gateway.Preload(ctx); err != nil {
			log.Printf("Warning: cache preload failed: %v", err)
		}
		cancel()
	}

	// Refresh the database-backed gauges periodically.
	metrics.UpdateTranslationMetrics(db)
	go func() {
		for range time.Tick(5 * time.Minute) {
			metrics.UpdateTranslationMetrics(db)
		}
	}()

	router := api.NewRouter(cfg, gateway, store)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on :%s (provider=%s, credentials=%d)", cfg.Port, cfg.Provider, len(creds))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	usage.Stop()
	log.Println("Shutdown complete")
}
