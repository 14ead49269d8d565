package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/validation"
)

func TestValidateUUID(t *testing.T) {
	t.Run("accepts a canonical UUID", func(t *testing.T) {
		if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
			t.Errorf("Expected valid UUID, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		err := validation.ValidateUUID("not-a-uuid")
		if !errors.Is(err, validation.ErrInvalidUUID) {
			t.Errorf("Expected ErrInvalidUUID, got %v", err)
		}
	})

	t.Run("rejects empty string", func(t *testing.T) {
		if err := validation.ValidateUUID(""); err == nil {
			t.Error("Expected an error for empty string")
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Run("parses YYYY-MM-DD", func(t *testing.T) {
		got, err := validation.ParseDate("2024-03-01")
		if err != nil {
			t.Fatalf("ParseDate failed: %v", err)
		}
		want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("falls back to RFC 3339", func(t *testing.T) {
		got, err := validation.ParseDate("2024-03-01T15:04:05Z")
		if err != nil {
			t.Fatalf("ParseDate failed: %v", err)
		}
		if got.Hour() != 15 {
			t.Errorf("Expected hour 15, got %d", got.Hour())
		}
	})

	t.Run("rejects other formats", func(t *testing.T) {
		_, err := validation.ParseDate("01/03/2024")
		if !errors.Is(err, validation.ErrInvalidDate) {
			t.Errorf("Expected ErrInvalidDate, got %v", err)
		}
	})
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	if err := validation.ValidateDateRange(start, end); err != nil {
		t.Errorf("Expected valid range, got %v", err)
	}
	if err := validation.ValidateDateRange(start, start); err != nil {
		t.Errorf("Expected same-day range to be valid, got %v", err)
	}
	if err := validation.ValidateDateRange(end, start); !errors.Is(err, validation.ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestValidateCreateTransaction(t *testing.T) {
	valid := request.CreateTransactionRequest{
		PortfolioID: "550e8400-e29b-41d4-a716-446655440000",
		Ticker:      "AAPL",
		Date:        "2024-03-01",
		Type:        model.TransactionTypeBuy,
		Quantity:    "10",
		Price:       "150",
		Currency:    "USD",
	}

	t.Run("accepts a valid BUY", func(t *testing.T) {
		if err := validation.ValidateCreateTransaction(valid); err != nil {
			t.Errorf("Expected valid request, got %v", err)
		}
	})

	t.Run("requires a ticker for BUY and SELL", func(t *testing.T) {
		req := valid
		req.Ticker = ""
		if err := validation.ValidateCreateTransaction(req); err == nil {
			t.Error("Expected an error for missing ticker")
		}

		req.Type = model.TransactionTypeDeposit
		req.Quantity = "1"
		if err := validation.ValidateCreateTransaction(req); err != nil {
			t.Errorf("Expected DEPOSIT without ticker to be valid, got %v", err)
		}
	})

	t.Run("rejects zero quantity on trades", func(t *testing.T) {
		req := valid
		req.Quantity = "0"
		if err := validation.ValidateCreateTransaction(req); err == nil {
			t.Error("Expected an error for zero quantity")
		}
	})

	t.Run("rejects negative price", func(t *testing.T) {
		req := valid
		req.Price = "-1"
		if err := validation.ValidateCreateTransaction(req); err == nil {
			t.Error("Expected an error for negative price")
		}
	})

	t.Run("rejects a non-positive exchange rate", func(t *testing.T) {
		req := valid
		req.ExchangeRate = "0"
		if err := validation.ValidateCreateTransaction(req); err == nil {
			t.Error("Expected an error for zero exchange rate")
		}
	})

	t.Run("collects every field error", func(t *testing.T) {
		req := request.CreateTransactionRequest{
			PortfolioID: "nope",
			Date:        "soon",
			Type:        "TRADE",
			Quantity:    "many",
			Price:       "cheap",
			Currency:    "DOLLARS",
		}

		err := validation.ValidateCreateTransaction(req)
		if err == nil {
			t.Fatal("Expected validation to fail")
		}

		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected a validation.Error, got %T", err)
		}
		for _, field := range []string{"portfolioId", "date", "type", "quantity", "price", "currency"} {
			if _, ok := verr.Fields[field]; !ok {
				t.Errorf("Expected an error for field %s", field)
			}
		}
	})
}
