package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rvermeulen/portfolio-ledger/internal/api/handlers"
	custommiddleware "github.com/rvermeulen/portfolio-ledger/internal/api/middleware"
	"github.com/rvermeulen/portfolio-ledger/internal/config"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System         *service.SystemService
	Portfolio      *service.PortfolioService
	Chart          *service.ChartService
	Journal        *service.JournalService
	Posting        *service.PostingService
	Lot            *service.LotService
	Reconciliation *service.ReconciliationService
	Report         *service.ReportService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
			r.Get("/", portfolioHandler.Portfolios)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", portfolioHandler.CreatePortfolio)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
			})
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(svc.Chart)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", accountHandler.CreateAccount)
			r.Route("/portfolio/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.Chart)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.With(custommiddleware.APIKeyMiddleware).Post("/deactivate", accountHandler.DeactivateAccount)
			})
		})

		journalHandler := handlers.NewJournalHandler(svc.Journal)
		r.Route("/journal", func(r chi.Router) {
			r.With(custommiddleware.APIKeyMiddleware).Post("/", journalHandler.CreateEntry)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", journalHandler.GetEntry)
				r.With(custommiddleware.APIKeyMiddleware).Post("/post", journalHandler.PostEntry)
				r.With(custommiddleware.APIKeyMiddleware).Post("/void", journalHandler.VoidEntry)
			})
		})

		r.Route("/ledger/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", journalHandler.Ledger)
			r.Get("/balance", journalHandler.Balance)
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(svc.Posting)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", transactionHandler.CreateTransaction)
			r.Route("/portfolio/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.TransactionPerPortfolio)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
			})
		})

		lotHandler := handlers.NewLotHandler(svc.Lot)
		r.Get("/lots/{portfolioId}/{ticker}", lotHandler.LotsByTicker)
		r.Route("/allocations/transaction/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", lotHandler.AllocationsByTransaction)
		})

		r.Route("/reconciliation", func(r chi.Router) {
			reconciliationHandler := handlers.NewReconciliationHandler(svc.Reconciliation)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", reconciliationHandler.Reconcile)
			r.With(custommiddleware.APIKeyMiddleware).Post("/auto/{portfolioId}", reconciliationHandler.AutoReconcile)
			r.Get("/summary/{portfolioId}", reconciliationHandler.Summary)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.With(custommiddleware.APIKeyMiddleware).Post("/discrepancy", reconciliationHandler.MarkDiscrepancy)
				r.With(custommiddleware.APIKeyMiddleware).Post("/resolve", reconciliationHandler.ResolveDiscrepancy)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(svc.Report)
			r.Get("/trial-balance/{portfolioId}", reportHandler.TrialBalance)
			r.Get("/income-statement/{portfolioId}", reportHandler.IncomeStatement)
			r.Get("/balance-sheet/{portfolioId}", reportHandler.BalanceSheet)
		})
	})

	return r
}
