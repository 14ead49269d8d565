package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvermeulen/portfolio-ledger/internal/api/handlers"
	"github.com/rvermeulen/portfolio-ledger/internal/testutil"
	"github.com/rvermeulen/portfolio-ledger/internal/version"
)

// TestSystemHandler_Health tests the GET /api/system/health endpoint.
func TestSystemHandler_Health(t *testing.T) {
	t.Run("reports healthy with a live database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)
		handler := handlers.NewSystemHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		response := testutil.DecodeJSON[handlers.HealthResponse](t, w)
		if response.Status != "healthy" {
			t.Errorf("Expected status 'healthy', got '%s'", response.Status)
		}
		if response.Database != "connected" {
			t.Errorf("Expected database 'connected', got '%s'", response.Database)
		}
	})

	t.Run("reports unhealthy with 503 when the database is down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		db.Close() // Force database error

		svc := testutil.NewTestSystemService(t, db)
		handler := handlers.NewSystemHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}

		response := testutil.DecodeJSON[handlers.HealthResponse](t, w)
		if response.Status != "unhealthy" {
			t.Errorf("Expected status 'unhealthy', got '%s'", response.Status)
		}
	})
}

// TestSystemHandler_Version tests the GET /api/system/version endpoint.
func TestSystemHandler_Version(t *testing.T) {
	t.Run("returns app and schema versions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)
		handler := handlers.NewSystemHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
		w := httptest.NewRecorder()

		handler.Version(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[handlers.VersionInfoResponse](t, w)
		if response.AppVersion != version.Version {
			t.Errorf("Expected app version %s, got %s", version.Version, response.AppVersion)
		}
		if response.SchemaVersion < 1 {
			t.Errorf("Expected a migrated schema version, got %d", response.SchemaVersion)
		}
	})
}
