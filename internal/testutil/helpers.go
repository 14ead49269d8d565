package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/rvermeulen/portfolio-ledger/internal/repository"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
)

func NewTestChartService(t *testing.T, db *sql.DB) *service.ChartService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)

	return service.NewChartService(db, accountRepo)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	chartService := NewTestChartService(t, db)

	return service.NewPortfolioService(
		db,
		portfolioRepo,
		chartService,
	)
}

func NewTestJournalService(t *testing.T, db *sql.DB) *service.JournalService {
	t.Helper()

	journalRepo := repository.NewJournalRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	return service.NewJournalService(
		db,
		journalRepo,
		accountRepo,
	)
}

func NewTestLotService(t *testing.T, db *sql.DB) *service.LotService {
	t.Helper()

	lotRepo := repository.NewLotRepository(db)

	return service.NewLotService(db, lotRepo)
}

func NewTestReconciliationService(t *testing.T, db *sql.DB) *service.ReconciliationService {
	t.Helper()

	reconciliationRepo := repository.NewReconciliationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	journalRepo := repository.NewJournalRepository(db)

	return service.NewReconciliationService(
		db,
		reconciliationRepo,
		transactionRepo,
		journalRepo,
	)
}

func NewTestReportService(t *testing.T, db *sql.DB) *service.ReportService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	journalService := NewTestJournalService(t, db)

	return service.NewReportService(
		accountRepo,
		journalRepo,
		journalService,
	)
}

func NewTestPostingService(t *testing.T, db *sql.DB) *service.PostingService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	return service.NewPostingService(
		db,
		portfolioRepo,
		transactionRepo,
		accountRepo,
		NewTestJournalService(t, db),
		NewTestLotService(t, db),
		NewTestReconciliationService(t, db),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a stock ticker symbol for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("AAPL")
//	// Returns: "AAPL1A2B"
func MakeTicker(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeAccountName generates a unique account name for testing.
func MakeAccountName(base string) string {
	if base == "" {
		base = "Account"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// CommonCurrencies contains frequently used currency codes
var CommonCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "CHF", "AUD"}

// RandomCurrency returns a random currency from CommonCurrencies.
func RandomCurrency() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonCurrencies[rand.Intn(len(CommonCurrencies))]
}
