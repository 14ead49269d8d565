package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = err.Error()
	}

	if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format"
	}

	if !model.ValidTransactionType(req.Type) {
		errors["type"] = "type must be one of BUY, SELL, DIVIDEND, FEE, DEPOSIT, WITHDRAWAL"
	}

	needsTicker := req.Type == model.TransactionTypeBuy || req.Type == model.TransactionTypeSell
	if needsTicker && strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required for BUY and SELL"
	}

	if quantity, err := decimal.NewFromString(req.Quantity); err != nil {
		errors["quantity"] = "quantity must be a decimal string"
	} else if quantity.IsNegative() || (needsTicker && quantity.IsZero()) {
		errors["quantity"] = "quantity must be positive"
	}

	if price, err := decimal.NewFromString(req.Price); err != nil {
		errors["price"] = "price must be a decimal string"
	} else if price.IsNegative() {
		errors["price"] = "price cannot be negative"
	}

	if len(req.Currency) != 3 {
		errors["currency"] = "currency must be a 3-letter currency code"
	}

	if req.ExchangeRate != "" {
		if rate, err := decimal.NewFromString(req.ExchangeRate); err != nil {
			errors["exchangeRate"] = "exchangeRate must be a decimal string"
		} else if !rate.IsPositive() {
			errors["exchangeRate"] = "exchangeRate must be positive"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
