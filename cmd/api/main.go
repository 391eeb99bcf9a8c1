package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/claimgen/internal/adapters/cache"
	"github.com/clinicore/claimgen/internal/adapters/database"
	"github.com/clinicore/claimgen/internal/adapters/search"
	"github.com/clinicore/claimgen/internal/api/handlers"
	"github.com/clinicore/claimgen/internal/api/middleware"
	"github.com/clinicore/claimgen/internal/api/routes"
	"github.com/clinicore/claimgen/internal/application/pipeline"
	"github.com/clinicore/claimgen/internal/application/services"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/domain/repositories"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/gemini"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/postgres"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/redis"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/riskapi"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/typesense"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
	"github.com/clinicore/claimgen/pkg/config"
	"github.com/clinicore/claimgen/pkg/secrets"
)

func main() {
	// Pull API keys and credentials from Vault into the environment
	// before the config reads them.
	if result, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv("")); err != nil {
		log.Printf("Warning: Vault secrets not applied: %v", err)
	} else if result.Enabled {
		log.Printf("Vault secrets applied from %s (loaded %d, skipped %d)", result.Path, result.Loaded, result.Skipped)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatalf("Failed to initialize Typesense client: %v", err)
	}
	log.Println("Typesense client initialized successfully")

	// Initialize Gemini client
	geminiClient, err := gemini.NewClient(ctx, &cfg.Gemini)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	log.Println("Gemini client initialized successfully")

	// Initialize adapters
	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	knowledgeAdapter := search.NewKnowledgeAdapter(typesenseClient)
	if err := knowledgeAdapter.InitSchema(context.Background()); err != nil {
		log.Printf("Warning: Failed to init Typesense schema: %v", err)
	}

	var knowledgeProvider providers.KnowledgeProvider = knowledgeAdapter
	if cacheProvider != nil && cfg.Pipeline.SnippetCacheTTLSeconds > 0 {
		knowledgeProvider = search.NewCachedKnowledgeAdapter(
			knowledgeAdapter,
			cacheProvider,
			cfg.Pipeline.SnippetCacheTTLSeconds,
			metrics,
		)
		log.Println("Knowledge adapter wrapped with caching layer")
	}

	var claimRepo repositories.ClaimRepository = database.NewClaimAdapter(pgClient)

	// Denial-risk scoring is optional; without a URL claims go unscored.
	var riskProvider providers.DenialRiskProvider
	if cfg.RiskAPI.BaseURL != "" {
		riskClient, err := riskapi.NewClient(&cfg.RiskAPI)
		if err != nil {
			log.Printf("Warning: Failed to initialize risk scoring client: %v", err)
		} else {
			riskProvider = riskClient
			log.Println("Risk scoring client initialized successfully")
		}
	}

	// Initialize pipeline and services
	claimPipeline := pipeline.New(geminiClient, knowledgeProvider, pipeline.Options{
		PayerName: cfg.Pipeline.PayerName,
		TopK:      cfg.Pipeline.RetrievalTopK,
		Metrics:   metrics,
	})

	claimService := services.NewClaimService(claimPipeline, claimRepo, cfg.Pipeline.PayerName, services.ClaimServiceOptions{
		Risk:          riskProvider,
		RetryExternal: cfg.Pipeline.ExternalRetries,
		Metrics:       metrics,
	})

	// Initialize handlers
	claimHandler := handlers.NewClaimHandler(claimService)

	healthHandler := handlers.NewHealthHandler()
	healthHandler.Register("postgres", pgClient)
	if redisClient != nil {
		healthHandler.Register("redis", redisClient)
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(claimHandler, healthHandler, cacheMiddleware, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
		// Generation holds the connection through several model calls.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
