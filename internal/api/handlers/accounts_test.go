package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvermeulen/portfolio-ledger/internal/api/handlers"
	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/testutil"
)

// TestAccountHandler_CreateAccount tests the POST /api/account endpoint.
func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("creates an account and returns 201", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		portfolio := createChartedPortfolio(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/account", request.CreateAccountRequest{
			PortfolioID: portfolio.ID,
			Code:        "1200",
			Name:        "Money Market",
			Type:        model.AccountTypeAsset,
			Currency:    "USD",
		}, nil)
		w := httptest.NewRecorder()

		handler.CreateAccount(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.Account](t, w)
		if response.Code != "1200" {
			t.Errorf("Expected code 1200, got %s", response.Code)
		}
		if response.IsSystem {
			t.Error("User-created account must not be a system account")
		}
	})

	t.Run("returns 409 for a duplicate code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		portfolio := createChartedPortfolio(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/account", request.CreateAccountRequest{
			PortfolioID: portfolio.ID,
			Code:        service.AccountCodeCash,
			Name:        "Shadow Cash",
			Type:        model.AccountTypeAsset,
			Currency:    "USD",
		}, nil)
		w := httptest.NewRecorder()

		handler.CreateAccount(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("returns 400 for an unknown account type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		portfolio := createChartedPortfolio(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/account", request.CreateAccountRequest{
			PortfolioID: portfolio.ID,
			Code:        "7000",
			Name:        "Mystery",
			Type:        "SOMETHING_ELSE",
			Currency:    "USD",
		}, nil)
		w := httptest.NewRecorder()

		handler.CreateAccount(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestAccountHandler_Chart tests the GET /api/account/portfolio/{uuid} endpoint.
func TestAccountHandler_Chart(t *testing.T) {
	t.Run("lists the seeded chart with full codes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		portfolio := createChartedPortfolio(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/account/portfolio/"+portfolio.ID,
			map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.Chart(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		response := testutil.DecodeJSON[[]model.AccountResponse](t, w)
		if len(response) != 7 {
			t.Errorf("Expected 7 seeded accounts, got %d", len(response))
		}
	})
}

// TestAccountHandler_DeactivateAccount tests the
// POST /api/account/{uuid}/deactivate endpoint.
func TestAccountHandler_DeactivateAccount(t *testing.T) {
	t.Run("deactivates a user account with 204", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		portfolio := createChartedPortfolio(t, db)
		account := testutil.NewAccount(portfolio.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/account/"+account.ID+"/deactivate",
			map[string]string{"uuid": account.ID})
		w := httptest.NewRecorder()

		handler.DeactivateAccount(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 422 for a system account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		portfolio := createChartedPortfolio(t, db)
		cash := chartAccountID(t, db, portfolio.ID, service.AccountCodeCash)

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/account/"+cash+"/deactivate",
			map[string]string{"uuid": cash})
		w := httptest.NewRecorder()

		handler.DeactivateAccount(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
	})

	t.Run("returns 404 for an unknown account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChartService(t, db)
		handler := handlers.NewAccountHandler(svc)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/account/"+id+"/deactivate",
			map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.DeactivateAccount(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
