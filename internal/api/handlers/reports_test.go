package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/api/handlers"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/testutil"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Bad date %q: %v", value, err)
	}
	return d
}

// TestReportHandler_TrialBalance tests the GET /api/reports/trial-balance endpoint.
func TestReportHandler_TrialBalance(t *testing.T) {
	t.Run("returns a balanced report", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)
		handler := handlers.NewReportHandler(svc)

		portfolio := createChartedPortfolio(t, db)
		postingService := testutil.NewTestPostingService(t, db)
		_, err := postingService.RecordTransactionEffects(context.Background(), service.RecordTransactionInput{
			PortfolioID: portfolio.ID,
			Date:        mustDate(t, "2024-03-01"),
			Type:        model.TransactionTypeDeposit,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("5000"),
			Currency:    "USD",
		})
		if err != nil {
			t.Fatalf("Failed to record deposit: %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reports/trial-balance/"+portfolio.ID,
			map[string]string{"portfolioId": portfolio.ID})
		w := httptest.NewRecorder()

		handler.TrialBalance(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		report := testutil.DecodeJSON[model.TrialBalance](t, w)
		if !report.TotalDebits.Equal(report.TotalCredits) {
			t.Errorf("Columns must match: debits %s, credits %s", report.TotalDebits, report.TotalCredits)
		}
		if !report.TotalDebits.Equal(decimal.RequireFromString("5000")) {
			t.Errorf("Expected column total 5000, got %s", report.TotalDebits)
		}
	})

	t.Run("rejects malformed portfolio ID with 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)
		handler := handlers.NewReportHandler(svc)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reports/trial-balance/not-a-uuid",
			map[string]string{"portfolioId": "not-a-uuid"})
		w := httptest.NewRecorder()

		handler.TrialBalance(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestReportHandler_IncomeStatement tests the GET /api/reports/income-statement endpoint.
func TestReportHandler_IncomeStatement(t *testing.T) {
	t.Run("requires start and end dates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)
		handler := handlers.NewReportHandler(svc)

		portfolio := createChartedPortfolio(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reports/income-statement/"+portfolio.ID,
			map[string]string{"portfolioId": portfolio.ID})
		w := httptest.NewRecorder()

		handler.IncomeStatement(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 without a period, got %d", w.Code)
		}
	})

	t.Run("rejects an inverted period with 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)
		handler := handlers.NewReportHandler(svc)

		portfolio := createChartedPortfolio(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reports/income-statement/"+portfolio.ID,
			map[string]string{"portfolioId": portfolio.ID})
		q := req.URL.Query()
		q.Add("start", "2024-12-31")
		q.Add("end", "2024-01-01")
		req.URL.RawQuery = q.Encode()
		w := httptest.NewRecorder()

		handler.IncomeStatement(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns net income for the period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)
		handler := handlers.NewReportHandler(svc)

		portfolio := createChartedPortfolio(t, db)
		postingService := testutil.NewTestPostingService(t, db)
		_, err := postingService.RecordTransactionEffects(context.Background(), service.RecordTransactionInput{
			PortfolioID: portfolio.ID,
			Ticker:      "AAPL",
			Date:        mustDate(t, "2024-03-04"),
			Type:        model.TransactionTypeDividend,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("24"),
			Currency:    "USD",
		})
		if err != nil {
			t.Fatalf("Failed to record dividend: %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reports/income-statement/"+portfolio.ID,
			map[string]string{"portfolioId": portfolio.ID})
		q := req.URL.Query()
		q.Add("start", "2024-03-01")
		q.Add("end", "2024-03-31")
		req.URL.RawQuery = q.Encode()
		w := httptest.NewRecorder()

		handler.IncomeStatement(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		report := testutil.DecodeJSON[model.IncomeStatement](t, w)
		if !report.NetIncome.Equal(decimal.RequireFromString("24")) {
			t.Errorf("Expected net income 24, got %s", report.NetIncome)
		}
	})
}

// TestReportHandler_BalanceSheet tests the GET /api/reports/balance-sheet endpoint.
func TestReportHandler_BalanceSheet(t *testing.T) {
	t.Run("holds the accounting equation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)
		handler := handlers.NewReportHandler(svc)

		portfolio := createChartedPortfolio(t, db)
		postingService := testutil.NewTestPostingService(t, db)
		_, err := postingService.RecordTransactionEffects(context.Background(), service.RecordTransactionInput{
			PortfolioID: portfolio.ID,
			Date:        mustDate(t, "2024-03-01"),
			Type:        model.TransactionTypeDeposit,
			Quantity:    decimal.RequireFromString("1"),
			Price:       decimal.RequireFromString("5000"),
			Currency:    "USD",
		})
		if err != nil {
			t.Fatalf("Failed to record deposit: %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reports/balance-sheet/"+portfolio.ID,
			map[string]string{"portfolioId": portfolio.ID})
		w := httptest.NewRecorder()

		handler.BalanceSheet(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		report := testutil.DecodeJSON[model.BalanceSheet](t, w)
		if !report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)) {
			t.Errorf("Accounting equation broken: assets %s, liabilities+equity %s",
				report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity))
		}
	})
}
