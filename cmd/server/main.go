package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rvermeulen/portfolio-ledger/internal/api"
	"github.com/rvermeulen/portfolio-ledger/internal/config"
	"github.com/rvermeulen/portfolio-ledger/internal/database"
	"github.com/rvermeulen/portfolio-ledger/internal/repository"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
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

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	lotRepo := repository.NewLotRepository(db)
	reconciliationRepo := repository.NewReconciliationRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	chartService := service.NewChartService(db, accountRepo)
	portfolioService := service.NewPortfolioService(db, portfolioRepo, chartService)
	journalService := service.NewJournalService(db, journalRepo, accountRepo)
	lotService := service.NewLotService(db, lotRepo)
	reconciliationService := service.NewReconciliationService(db, reconciliationRepo, transactionRepo, journalRepo)
	reportService := service.NewReportService(accountRepo, journalRepo, journalService)
	postingService := service.NewPostingService(
		db,
		portfolioRepo,
		transactionRepo,
		accountRepo,
		journalService,
		lotService,
		reconciliationService,
	)

	// Create router
	router := api.NewRouter(api.Services{
		System:         systemService,
		Portfolio:      portfolioService,
		Chart:          chartService,
		Journal:        journalService,
		Posting:        postingService,
		Lot:            lotService,
		Reconciliation: reconciliationService,
		Report:         reportService,
	}, cfg)

	// Optional scheduled auto-reconciliation sweep across all portfolios
	var scheduler *cron.Cron
	if cfg.Reconcile.Schedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Reconcile.Schedule, func() {
			ids, err := portfolioRepo.GetIDs()
			if err != nil {
				log.Printf("Auto-reconcile sweep failed to list portfolios: %v", err)
				return
			}
			for _, id := range ids {
				reconciled, err := reconciliationService.AutoReconcile(context.Background(), id)
				if err != nil {
					log.Printf("Auto-reconcile sweep failed for portfolio %s: %v", id, err)
					continue
				}
				if reconciled > 0 {
					log.Printf("Auto-reconcile sweep matched %d transactions in portfolio %s", reconciled, id)
				}
			}
		})
		if err != nil {
			log.Fatalf("Invalid auto-reconcile schedule %q: %v", cfg.Reconcile.Schedule, err)
		}
		scheduler.Start()
		log.Printf("Auto-reconcile sweep scheduled: %s", cfg.Reconcile.Schedule)
	}

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

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
