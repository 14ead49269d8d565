package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/testutil"
)

// seedReportingPortfolio runs a small trading history through the posting
// pipeline: a deposit, a buy, a partial sale at a gain, a dividend and a fee.
func seedReportingPortfolio(t *testing.T, portfolioService *service.PortfolioService, postingService *service.PostingService) *model.Portfolio {
	t.Helper()
	ctx := context.Background()

	portfolio := seedPortfolioWithChart(t, portfolioService)

	history := []service.RecordTransactionInput{
		{
			PortfolioID: portfolio.ID,
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Type:        model.TransactionTypeDeposit,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("10000"),
			Currency:    "USD",
		},
		{
			PortfolioID: portfolio.ID,
			Ticker:      "AAPL",
			Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Type:        model.TransactionTypeBuy,
			Quantity:    decimal.RequireFromString("10"),
			Price:       decimal.RequireFromString("150"),
			Currency:    "USD",
		},
		{
			PortfolioID: portfolio.ID,
			Ticker:      "AAPL",
			Date:        time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
			Type:        model.TransactionTypeSell,
			Quantity:    decimal.RequireFromString("4"),
			Price:       decimal.RequireFromString("175"),
			Currency:    "USD",
		},
		{
			PortfolioID: portfolio.ID,
			Ticker:      "AAPL",
			Date:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Type:        model.TransactionTypeDividend,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("24"),
			Currency:    "USD",
		},
		{
			PortfolioID: portfolio.ID,
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Type:        model.TransactionTypeFee,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("9.95"),
			Currency:    "USD",
		},
	}

	for _, in := range history {
		if _, err := postingService.RecordTransactionEffects(ctx, in); err != nil {
			t.Fatalf("Failed to record %s transaction: %v", in.Type, err)
		}
	}

	return portfolio
}

func TestTrialBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	portfolioService := testutil.NewTestPortfolioService(t, db)
	postingService := testutil.NewTestPostingService(t, db)
	reportService := testutil.NewTestReportService(t, db)

	portfolio := seedReportingPortfolio(t, portfolioService, postingService)
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	report, err := reportService.TrialBalance(portfolio.ID, asOf)
	if err != nil {
		t.Fatalf("TrialBalance failed: %v", err)
	}

	if !report.TotalDebits.Equal(report.TotalCredits) {
		t.Errorf("Columns must match: debits %s, credits %s", report.TotalDebits, report.TotalCredits)
	}
	if !report.TotalDebits.Equal(decimal.RequireFromString("10124")) {
		t.Errorf("Expected column total 10124, got %s", report.TotalDebits)
	}

	rowByCode := map[string]model.TrialBalanceRow{}
	for _, row := range report.Rows {
		rowByCode[row.Code] = row
	}

	expectations := map[string]struct{ debit, credit string }{
		service.AccountCodeCash:           {"9214.05", "0"},
		service.AccountCodeInvestments:    {"900", "0"},
		service.AccountCodeOpeningEquity:  {"0", "10000"},
		service.AccountCodeRealizedGains:  {"0", "100"},
		service.AccountCodeDividendIncome: {"0", "24"},
		service.AccountCodeFees:           {"9.95", "0"},
	}
	for code, want := range expectations {
		row, ok := rowByCode[code]
		if !ok {
			t.Errorf("Missing row for account %s", code)
			continue
		}
		if !row.Debit.Equal(decimal.RequireFromString(want.debit)) {
			t.Errorf("Account %s: expected debit %s, got %s", code, want.debit, row.Debit)
		}
		if !row.Credit.Equal(decimal.RequireFromString(want.credit)) {
			t.Errorf("Account %s: expected credit %s, got %s", code, want.credit, row.Credit)
		}
	}

	t.Run("empty portfolio balances at zero", func(t *testing.T) {
		empty := seedPortfolioWithChart(t, portfolioService)
		report, err := reportService.TrialBalance(empty.ID, asOf)
		if err != nil {
			t.Fatalf("TrialBalance failed: %v", err)
		}
		if !report.TotalDebits.IsZero() || !report.TotalCredits.IsZero() {
			t.Errorf("Expected zero totals, got debits %s credits %s", report.TotalDebits, report.TotalCredits)
		}
	})
}

func TestIncomeStatement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	portfolioService := testutil.NewTestPortfolioService(t, db)
	postingService := testutil.NewTestPostingService(t, db)
	reportService := testutil.NewTestReportService(t, db)

	portfolio := seedReportingPortfolio(t, portfolioService, postingService)

	t.Run("nets revenue against expenses for the period", func(t *testing.T) {
		report, err := reportService.IncomeStatement(portfolio.ID,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("IncomeStatement failed: %v", err)
		}

		if !report.TotalRevenue.Equal(decimal.RequireFromString("124")) {
			t.Errorf("Expected total revenue 124, got %s", report.TotalRevenue)
		}
		if !report.TotalExpenses.Equal(decimal.RequireFromString("9.95")) {
			t.Errorf("Expected total expenses 9.95, got %s", report.TotalExpenses)
		}
		if !report.NetIncome.Equal(decimal.RequireFromString("114.05")) {
			t.Errorf("Expected net income 114.05, got %s", report.NetIncome)
		}
	})

	t.Run("period bounds are strict", func(t *testing.T) {
		// Only the dividend falls on March 4th.
		report, err := reportService.IncomeStatement(portfolio.ID,
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("IncomeStatement failed: %v", err)
		}
		if !report.TotalRevenue.Equal(decimal.RequireFromString("24")) {
			t.Errorf("Expected only the dividend in the period, got %s", report.TotalRevenue)
		}
		if !report.TotalExpenses.IsZero() {
			t.Errorf("Expected no expenses in the period, got %s", report.TotalExpenses)
		}
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := reportService.IncomeStatement(portfolio.ID,
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}

func TestBalanceSheet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	portfolioService := testutil.NewTestPortfolioService(t, db)
	postingService := testutil.NewTestPostingService(t, db)
	reportService := testutil.NewTestReportService(t, db)

	portfolio := seedReportingPortfolio(t, portfolioService, postingService)
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	report, err := reportService.BalanceSheet(portfolio.ID, asOf)
	if err != nil {
		t.Fatalf("BalanceSheet failed: %v", err)
	}

	if !report.TotalAssets.Equal(decimal.RequireFromString("10114.05")) {
		t.Errorf("Expected total assets 10114.05, got %s", report.TotalAssets)
	}
	if !report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)) {
		t.Errorf("Accounting equation broken: assets %s, liabilities+equity %s",
			report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity))
	}

	var earnings *model.ReportLine
	for i := range report.Equity {
		if report.Equity[i].Code == "9999" {
			earnings = &report.Equity[i]
		}
	}
	if earnings == nil {
		t.Fatal("Expected a derived Current Earnings line")
	}
	if !earnings.Amount.Equal(decimal.RequireFromString("114.05")) {
		t.Errorf("Expected current earnings 114.05, got %s", earnings.Amount)
	}

	t.Run("asOf before any activity shows an empty sheet", func(t *testing.T) {
		early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		report, err := reportService.BalanceSheet(portfolio.ID, early)
		if err != nil {
			t.Fatalf("BalanceSheet failed: %v", err)
		}
		if !report.TotalAssets.IsZero() {
			t.Errorf("Expected zero assets before any activity, got %s", report.TotalAssets)
		}
		if !report.TotalEquity.IsZero() {
			t.Errorf("Expected zero equity before any activity, got %s", report.TotalEquity)
		}
	})
}
