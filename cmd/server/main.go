package main

import (
	"fmt"
	"log"
	"os"

	"github.com/vanshika2720/Sustainable-Food-Tracker/config"
	httpDelivery "github.com/vanshika2720/Sustainable-Food-Tracker/internal/delivery/http"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/openfoodfacts"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Sustainable Food Tracker API v%s", httpDelivery.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	productCache, closeCache := provideCache(cfg)
	defer closeCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	store, closeStore, err := provideLedgerStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open ledger store: %v", err)
	}
	defer closeStore()

	client := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		MaxAttempts:       cfg.OpenFoodFacts.MaxAttempts,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
		Timeout:           cfg.OpenFoodFacts.AttemptTimeout,
	})

	// Enable debug mode in development environment
	if cfg.OpenFoodFacts.Debug || cfg.Server.Environment == "development" {
		client.SetDebug(true)
		log.Printf("Product API client debug mode enabled")
	}
	log.Printf("Product API: %s (%d req/min, attempt timeout %s)",
		cfg.OpenFoodFacts.BaseURL,
		cfg.OpenFoodFacts.RequestsPerMinute,
		cfg.OpenFoodFacts.AttemptTimeout)

	// Initialize usecase layer
	ledgerService := usecase.NewLedgerService(store, usecase.LedgerServiceConfig{
		HistoryLimit:        cfg.Ledger.HistoryLimit,
		IncludeEstimatedCO2: cfg.Scoring.IncludeEstimatedCO2,
	})

	productService := usecase.NewProductService(
		productCache,
		usecase.NewResolver(client, usecase.ResolverConfig{
			AttemptTimeout: cfg.OpenFoodFacts.AttemptTimeout,
			SearchPageSize: cfg.OpenFoodFacts.SearchPageSize,
		}),
		usecase.NewScorer(usecase.ScorerConfig{
			IncludeEstimatedCO2: cfg.Scoring.IncludeEstimatedCO2,
		}),
		ledgerService,
		usecase.ProductServiceConfig{
			CacheTTL:      cfg.Cache.TTL,
			FuzzyMatching: cfg.Scoring.FuzzyMatching,
			Debug:         cfg.OpenFoodFacts.Debug,
		},
	)

	log.Printf("Ledger: history limit=%d, estimated CO2 in impact=%v",
		cfg.Ledger.HistoryLimit,
		cfg.Scoring.IncludeEstimatedCO2)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(productService, ledgerService)

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
