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

func TestRecordTransactionEffects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	portfolioService := testutil.NewTestPortfolioService(t, db)
	postingService := testutil.NewTestPostingService(t, db)
	journalService := testutil.NewTestJournalService(t, db)
	chartService := testutil.NewTestChartService(t, db)
	ctx := context.Background()

	portfolio := seedPortfolioWithChart(t, portfolioService)

	record := func(t *testing.T, in service.RecordTransactionInput) *service.TransactionEffects {
		t.Helper()
		effects, err := postingService.RecordTransactionEffects(ctx, in)
		if err != nil {
			t.Fatalf("RecordTransactionEffects failed: %v", err)
		}
		return effects
	}

	day := func(d int) time.Time {
		return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("DEPOSIT funds cash against opening equity", func(t *testing.T) {
		effects := record(t, service.RecordTransactionInput{
			PortfolioID: portfolio.ID,
			Date:        day(1),
			Type:        model.TransactionTypeDeposit,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("10000"),
			Currency:    "USD",
		})

		if effects.Entry == nil || effects.Entry.Status != model.EntryStatusPosted {
			t.Fatalf("Expected a POSTED journal entry, got %+v", effects.Entry)
		}
		if effects.Reconciliation == nil || effects.Reconciliation.Status != model.ReconciliationStatusReconciled {
			t.Fatalf("Expected a RECONCILED link, got %+v", effects.Reconciliation)
		}
		if effects.Entry.Reference != effects.Transaction.ID {
			t.Errorf("Entry reference must carry the transaction ID")
		}

		cash := accountByCode(t, chartService, portfolio.ID, service.AccountCodeCash)
		balance, err := journalService.AccountBalance(cash.ID, nil)
		if err != nil {
			t.Fatalf("AccountBalance failed: %v", err)
		}
		if !balance.Equal(decimal.RequireFromString("10000")) {
			t.Errorf("Expected cash balance 10000, got %s", balance)
		}
	})

	t.Run("BUY opens a lot and moves cash into investments", func(t *testing.T) {
		effects := record(t, service.RecordTransactionInput{
			PortfolioID:  portfolio.ID,
			Ticker:       "AAPL",
			Date:         day(2),
			Type:         model.TransactionTypeBuy,
			Quantity:     decimal.RequireFromString("10"),
			Price:        decimal.RequireFromString("150"),
			Currency:     "USD",
			ExchangeRate: decimal.RequireFromString("1"),
		})

		if effects.Lot == nil {
			t.Fatal("Expected a lot for the BUY")
		}
		if !effects.Lot.RemainingQuantity.Equal(decimal.RequireFromString("10")) {
			t.Errorf("Expected lot with 10 units, got %s", effects.Lot.RemainingQuantity)
		}

		investments := accountByCode(t, chartService, portfolio.ID, service.AccountCodeInvestments)
		balance, err := journalService.AccountBalance(investments.ID, nil)
		if err != nil {
			t.Fatalf("AccountBalance failed: %v", err)
		}
		if !balance.Equal(decimal.RequireFromString("1500")) {
			t.Errorf("Expected investments balance 1500, got %s", balance)
		}
	})

	t.Run("SELL books proceeds, cost release and realized gain", func(t *testing.T) {
		effects := record(t, service.RecordTransactionInput{
			PortfolioID:  portfolio.ID,
			Ticker:       "AAPL",
			Date:         day(3),
			Type:         model.TransactionTypeSell,
			Quantity:     decimal.RequireFromString("4"),
			Price:        decimal.RequireFromString("175"),
			Currency:     "USD",
			ExchangeRate: decimal.RequireFromString("1"),
		})

		if len(effects.Allocations) != 1 {
			t.Fatalf("Expected 1 allocation, got %d", len(effects.Allocations))
		}
		gain := effects.Allocations[0].RealizedGainLoss
		if !gain.Equal(decimal.RequireFromString("100")) {
			t.Errorf("Expected realized gain 100, got %s", gain)
		}

		gains := accountByCode(t, chartService, portfolio.ID, service.AccountCodeRealizedGains)
		balance, err := journalService.AccountBalance(gains.ID, nil)
		if err != nil {
			t.Fatalf("AccountBalance failed: %v", err)
		}
		if !balance.Equal(decimal.RequireFromString("100")) {
			t.Errorf("Expected realized gains balance 100, got %s", balance)
		}

		investments := accountByCode(t, chartService, portfolio.ID, service.AccountCodeInvestments)
		invBalance, err := journalService.AccountBalance(investments.ID, nil)
		if err != nil {
			t.Fatalf("AccountBalance failed: %v", err)
		}
		if !invBalance.Equal(decimal.RequireFromString("900")) {
			t.Errorf("Expected investments balance 900 after releasing cost, got %s", invBalance)
		}
	})

	t.Run("DIVIDEND credits dividend income", func(t *testing.T) {
		record(t, service.RecordTransactionInput{
			PortfolioID: portfolio.ID,
			Ticker:      "AAPL",
			Date:        day(4),
			Type:        model.TransactionTypeDividend,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("24"),
			Currency:    "USD",
		})

		income := accountByCode(t, chartService, portfolio.ID, service.AccountCodeDividendIncome)
		balance, err := journalService.AccountBalance(income.ID, nil)
		if err != nil {
			t.Fatalf("AccountBalance failed: %v", err)
		}
		if !balance.Equal(decimal.RequireFromString("24")) {
			t.Errorf("Expected dividend income 24, got %s", balance)
		}
	})

	t.Run("FEE debits the fee expense account", func(t *testing.T) {
		record(t, service.RecordTransactionInput{
			PortfolioID: portfolio.ID,
			Date:        day(5),
			Type:        model.TransactionTypeFee,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("9.95"),
			Currency:    "USD",
		})

		fees := accountByCode(t, chartService, portfolio.ID, service.AccountCodeFees)
		balance, err := journalService.AccountBalance(fees.ID, nil)
		if err != nil {
			t.Fatalf("AccountBalance failed: %v", err)
		}
		if !balance.Equal(decimal.RequireFromString("9.95")) {
			t.Errorf("Expected fees balance 9.95, got %s", balance)
		}
	})

	t.Run("failed SELL leaves no partial state behind", func(t *testing.T) {
		before := testutil.CountRows(t, db, "transaction")
		entriesBefore := testutil.CountRows(t, db, "journal_entry")

		_, err := postingService.RecordTransactionEffects(ctx, service.RecordTransactionInput{
			PortfolioID:  portfolio.ID,
			Ticker:       "AAPL",
			Date:         day(6),
			Type:         model.TransactionTypeSell,
			Quantity:     decimal.RequireFromString("1000"),
			Price:        decimal.RequireFromString("10"),
			Currency:     "USD",
			ExchangeRate: decimal.RequireFromString("1"),
		})
		if !errors.Is(err, apperrors.ErrInsufficientLots) {
			t.Fatalf("Expected ErrInsufficientLots, got %v", err)
		}

		testutil.AssertRowCount(t, db, "transaction", before)
		testutil.AssertRowCount(t, db, "journal_entry", entriesBefore)
	})

	t.Run("foreign currency carries the original amount on the lines", func(t *testing.T) {
		effects := record(t, service.RecordTransactionInput{
			PortfolioID:  portfolio.ID,
			Ticker:       "ASML",
			Date:         day(7),
			Type:         model.TransactionTypeBuy,
			Quantity:     decimal.RequireFromString("2"),
			Price:        decimal.RequireFromString("600"),
			Currency:     "EUR",
			ExchangeRate: decimal.RequireFromString("1.1"),
		})

		entry, err := journalService.GetEntry(effects.Entry.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		line := entry.Lines[0]
		if !line.ForeignAmount.Valid || !line.ForeignAmount.Decimal.Equal(decimal.RequireFromString("1200")) {
			t.Errorf("Expected foreign amount 1200 EUR on the line, got %+v", line.ForeignAmount)
		}
		if line.ForeignCurrency != "EUR" {
			t.Errorf("Expected foreign currency EUR, got %s", line.ForeignCurrency)
		}
		if !entry.TotalDebits().Equal(decimal.RequireFromString("1320")) {
			t.Errorf("Expected base debit total 1320, got %s", entry.TotalDebits())
		}
	})

	t.Run("unknown portfolio is rejected", func(t *testing.T) {
		_, err := postingService.RecordTransactionEffects(ctx, service.RecordTransactionInput{
			PortfolioID: testutil.MakeID(),
			Date:        day(8),
			Type:        model.TransactionTypeDeposit,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("100"),
			Currency:    "USD",
		})
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}
