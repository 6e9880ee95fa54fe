package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cryptofolio/backend/internal/api"
	"github.com/cryptofolio/backend/internal/config"
	"github.com/cryptofolio/backend/internal/database"
	"github.com/cryptofolio/backend/internal/pricing"
	"github.com/cryptofolio/backend/internal/repository"
	"github.com/cryptofolio/backend/internal/service"
	"github.com/cryptofolio/backend/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	providerRepo, err := repository.NewProviderRepository(db, cfg.Pricing.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize provider repository: %v", err)
	}

	// Select the price source; a stored API key takes effect on restart.
	apiKey := ""
	if key, err := providerRepo.GetKey(cfg.Pricing.Provider); err == nil {
		apiKey = key
	}
	priceSource, err := pricing.New(cfg.Pricing.Provider, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize price source: %v", err)
	}
	log.Printf("Using price provider: %s", priceSource.Name())

	// Background job infrastructure
	queue := worker.NewQueue(cfg.Worker.QueueSize)
	userLocks := worker.NewKeyedMutex()

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(transactionRepo, assetRepo, priceSource)
	historyService := service.NewHistoryService(transactionRepo, snapshotRepo, priceRepo, queue, userLocks)
	reconcilerService := service.NewReconcilerService(
		priceRepo,
		snapshotRepo,
		assetRepo,
		transactionRepo,
		portfolioService,
		priceSource,
		queue,
		userLocks,
	)
	transactionService := service.NewTransactionService(transactionRepo, reconcilerService)

	queue.Start(cfg.Worker.PoolSize)

	// Nightly snapshot refresh
	scheduler := worker.NewScheduler()
	if err := scheduler.Add(cfg.Worker.RefreshSchedule, reconcilerService.EnqueueRefreshAll); err != nil {
		log.Fatalf("Failed to schedule snapshot refresh: %v", err)
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(systemService, portfolioService, historyService, transactionService, providerRepo, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Stop background work after the HTTP surface is closed
	scheduler.Stop(ctx)
	queue.Shutdown(ctx)

	log.Println("Server exited")
}
