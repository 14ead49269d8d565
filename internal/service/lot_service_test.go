package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/testutil"
)

func TestOpenLot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	lotService := testutil.NewTestLotService(t, db)
	ctx := context.Background()

	portfolio := testutil.NewPortfolio().Build(t, db)
	buy := testutil.NewTransaction(portfolio.ID).
		WithTicker("AAPL").
		WithQuantity("10").
		WithPrice("150").
		Build(t, db)

	t.Run("creates lot mirroring the purchase", func(t *testing.T) {
		lot, err := lotService.OpenLot(ctx, buy)
		if err != nil {
			t.Fatalf("OpenLot failed: %v", err)
		}

		if !lot.RemainingQuantity.Equal(buy.Quantity) {
			t.Errorf("Expected remaining quantity %s, got %s", buy.Quantity, lot.RemainingQuantity)
		}
		if !lot.TotalCostBase.Equal(decimal.RequireFromString("1500")) {
			t.Errorf("Expected total base cost 1500, got %s", lot.TotalCostBase)
		}
		if lot.IsClosed {
			t.Error("New lot must be open")
		}
	})

	t.Run("rejects a second lot for the same transaction", func(t *testing.T) {
		_, err := lotService.OpenLot(ctx, buy)
		if !errors.Is(err, apperrors.ErrDuplicateLot) {
			t.Errorf("Expected ErrDuplicateLot, got %v", err)
		}
		testutil.AssertRowCount(t, db, "security_lot", 1)
	})

	t.Run("converts foreign purchases into the base currency", func(t *testing.T) {
		foreign := testutil.NewTransaction(portfolio.ID).
			WithTicker("ASML").
			WithQuantity("2").
			WithPrice("600").
			WithCurrency("EUR").
			WithExchangeRate("1.1").
			Build(t, db)

		lot, err := lotService.OpenLot(ctx, foreign)
		if err != nil {
			t.Fatalf("OpenLot failed: %v", err)
		}
		if !lot.CostPerShareBase.Equal(decimal.RequireFromString("660")) {
			t.Errorf("Expected base cost per share 660, got %s", lot.CostPerShareBase)
		}
		if !lot.TotalCostBase.Equal(decimal.RequireFromString("1320")) {
			t.Errorf("Expected total base cost 1320, got %s", lot.TotalCostBase)
		}
	})
}

func TestAllocateSaleFIFO(t *testing.T) {
	db := testutil.SetupTestDB(t)
	lotService := testutil.NewTestLotService(t, db)
	ctx := context.Background()

	portfolio := testutil.NewPortfolio().Build(t, db)

	openLot := func(t *testing.T, ticker, date, quantity, price string) *model.SecurityLot {
		t.Helper()
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatalf("Bad date %q: %v", date, err)
		}
		buy := testutil.NewTransaction(portfolio.ID).
			WithTicker(ticker).
			WithDate(parsed).
			WithQuantity(quantity).
			WithPrice(price).
			Build(t, db)
		lot, err := lotService.OpenLot(ctx, buy)
		if err != nil {
			t.Fatalf("OpenLot failed: %v", err)
		}
		return lot
	}

	t.Run("consumes oldest lots first and splits proceeds", func(t *testing.T) {
		lotA := openLot(t, "MSFT", "2024-01-10", "10", "10")
		lotB := openLot(t, "MSFT", "2024-02-10", "10", "12")

		sell := testutil.NewTransaction(portfolio.ID).
			WithTicker("MSFT").
			WithDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
			WithType(model.TransactionTypeSell).
			WithQuantity("15").
			WithPrice("15").
			Build(t, db)

		// 15 units at $15 = $225 proceeds.
		allocations, err := lotService.AllocateSale(ctx, sell, decimal.RequireFromString("225"))
		if err != nil {
			t.Fatalf("AllocateSale failed: %v", err)
		}
		if len(allocations) != 2 {
			t.Fatalf("Expected 2 allocations, got %d", len(allocations))
		}

		first, second := allocations[0], allocations[1]
		if first.LotID != lotA.ID {
			t.Errorf("Expected oldest lot consumed first")
		}
		if !first.QuantityAllocated.Equal(decimal.RequireFromString("10")) {
			t.Errorf("Expected 10 units from the first lot, got %s", first.QuantityAllocated)
		}
		if !first.CostBasis.Equal(decimal.RequireFromString("100")) {
			t.Errorf("Expected cost basis 100, got %s", first.CostBasis)
		}
		if !first.Proceeds.Equal(decimal.RequireFromString("150")) {
			t.Errorf("Expected proceeds 150, got %s", first.Proceeds)
		}

		if second.LotID != lotB.ID {
			t.Errorf("Expected the newer lot consumed second")
		}
		if !second.QuantityAllocated.Equal(decimal.RequireFromString("5")) {
			t.Errorf("Expected 5 units from the second lot, got %s", second.QuantityAllocated)
		}
		if !second.CostBasis.Equal(decimal.RequireFromString("60")) {
			t.Errorf("Expected cost basis 60, got %s", second.CostBasis)
		}
		if !second.Proceeds.Equal(decimal.RequireFromString("75")) {
			t.Errorf("Expected proceeds 75, got %s", second.Proceeds)
		}

		totalGain := first.RealizedGainLoss.Add(second.RealizedGainLoss)
		if !totalGain.Equal(decimal.RequireFromString("65")) {
			t.Errorf("Expected total realized gain 65, got %s", totalGain)
		}

		lots, err := lotService.GetLots(portfolio.ID, "MSFT")
		if err != nil {
			t.Fatalf("GetLots failed: %v", err)
		}
		if !lots[0].IsClosed || !lots[0].RemainingQuantity.IsZero() {
			t.Errorf("Expected first lot fully closed, remaining %s", lots[0].RemainingQuantity)
		}
		if lots[1].IsClosed || !lots[1].RemainingQuantity.Equal(decimal.RequireFromString("5")) {
			t.Errorf("Expected 5 units left in second lot, got %s", lots[1].RemainingQuantity)
		}
	})

	t.Run("oversell fails without touching any lot", func(t *testing.T) {
		openLot(t, "NVDA", "2024-01-05", "3", "500")

		sell := testutil.NewTransaction(portfolio.ID).
			WithTicker("NVDA").
			WithType(model.TransactionTypeSell).
			WithQuantity("5").
			WithPrice("600").
			Build(t, db)

		_, err := lotService.AllocateSale(ctx, sell, decimal.RequireFromString("3000"))
		if !errors.Is(err, apperrors.ErrInsufficientLots) {
			t.Fatalf("Expected ErrInsufficientLots, got %v", err)
		}

		lots, err := lotService.GetLots(portfolio.ID, "NVDA")
		if err != nil {
			t.Fatalf("GetLots failed: %v", err)
		}
		if !lots[0].RemainingQuantity.Equal(decimal.RequireFromString("3")) {
			t.Errorf("Expected lot untouched with 3 units, got %s", lots[0].RemainingQuantity)
		}

		allocations, err := lotService.GetAllocationsByTransaction(sell.ID)
		if err != nil {
			t.Fatalf("GetAllocationsByTransaction failed: %v", err)
		}
		if len(allocations) != 0 {
			t.Errorf("Expected no allocations for the failed sale, got %d", len(allocations))
		}
	})

	t.Run("same-day lots consume in creation order", func(t *testing.T) {
		first := openLot(t, "TSLA", "2024-04-01", "4", "100")
		openLot(t, "TSLA", "2024-04-01", "4", "110")

		sell := testutil.NewTransaction(portfolio.ID).
			WithTicker("TSLA").
			WithType(model.TransactionTypeSell).
			WithQuantity("4").
			WithPrice("120").
			Build(t, db)

		allocations, err := lotService.AllocateSale(ctx, sell, decimal.RequireFromString("480"))
		if err != nil {
			t.Fatalf("AllocateSale failed: %v", err)
		}
		if len(allocations) != 1 {
			t.Fatalf("Expected 1 allocation, got %d", len(allocations))
		}
		if allocations[0].LotID != first.ID {
			t.Errorf("Expected the earlier-created lot consumed first")
		}
	})
}
