package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/imagehost"
	"github.com/pricelens/backend/internal/infrastructure/llm"
	"github.com/pricelens/backend/internal/infrastructure/serpapi"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Market: %s (%s)", cfg.Market.Region, cfg.Market.Currency)
	log.Printf("Cache Type: %s (TTL: %s)", cfg.Cache.Type, cfg.Cache.TTL)

	debug := cfg.Server.Environment == "development"

	// Initialize cache backend
	var cacheRepo domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize redis cache: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("Redis unreachable: %v", err)
		}
		cancel()
		cacheRepo = redisCache
	} else {
		cacheRepo = cache.NewMemoryCache()
	}

	// Initialize collaborator clients
	serpClient := serpapi.NewClient(
		cfg.Serp.APIKey, cfg.Serp.BaseURL,
		cfg.Market.Region, cfg.Market.Currency,
		cfg.RateLimit.Serp,
	)
	uploader := imagehost.NewClient(cfg.ImageHost.APIKey, cfg.ImageHost.BaseURL)

	var cleaner domain.NameCleaner
	if cfg.LLM.Enabled {
		llmCleaner := llm.NewCleaner(cfg.LLM.APIKey, cfg.LLM.Model)
		llmCleaner.SetDebug(debug)
		cleaner = llmCleaner
		log.Printf("LLM name cleanup enabled (model: %s)", cfg.LLM.Model)
	}

	if debug {
		serpClient.SetDebug(true)
		uploader.SetDebug(true)
		log.Printf("Collaborator debug logging enabled")
	}

	// Initialize the reconciliation engine
	sanitizer := usecase.NewNameSanitizer(debug)
	extractor := usecase.NewPriceExtractor(debug)
	trust := usecase.NewTrustRegionClassifier(usecase.TrustConfig{
		TrustedDomains:   cfg.Market.TrustedDomains,
		BlockedDomains:   cfg.Market.BlockedDomains,
		RegionalSuffixes: cfg.Market.RegionalSuffixes,
		Currency:         cfg.Market.Currency,
	})
	stock := usecase.NewStockClassifier(cfg.Reconcile.OptimisticStock)
	engine := usecase.NewReconciler(extractor, trust, stock, usecase.ReconcilerConfig{
		Currency:           cfg.Market.Currency,
		MaxAlternates:      cfg.Reconcile.MaxAlternates,
		ExtraAlternates:    cfg.Reconcile.ExtraAlternates,
		EnableDebugLogging: debug,
	})

	scanService := usecase.NewScanService(
		cacheRepo, serpClient, uploader, cleaner, sanitizer, engine,
		usecase.ScanServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: debug,
		},
	)

	log.Printf("Reconciliation: alternates=%d+%d, optimistic_stock=%v, trusted=%d domains, blocked=%d domains",
		cfg.Reconcile.MaxAlternates, cfg.Reconcile.ExtraAlternates,
		cfg.Reconcile.OptimisticStock,
		len(cfg.Market.TrustedDomains), len(cfg.Market.BlockedDomains))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(scanService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
