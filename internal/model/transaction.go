package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. BUY and SELL drive the lot tracker; the remaining types
// only produce balanced journal entries.
const (
	TransactionTypeBuy        = "BUY"
	TransactionTypeSell       = "SELL"
	TransactionTypeDividend   = "DIVIDEND"
	TransactionTypeFee        = "FEE"
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
)

// Transaction is a validated brokerage transaction handed to the ledger by
// the import layer. Quantity and Price are in the transaction currency;
// ExchangeRate converts one unit of that currency into the portfolio base
// currency and is already resolved upstream.
type Transaction struct {
	ID           string          `json:"id"`
	PortfolioID  string          `json:"portfolioId"`
	Ticker       string          `json:"ticker,omitempty"`
	Date         time.Time       `json:"date"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
}

// GrossAmount is quantity times price in the transaction currency.
func (t Transaction) GrossAmount() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// BaseAmount is the gross amount converted to the portfolio base currency.
func (t Transaction) BaseAmount() decimal.Decimal {
	return t.Quantity.Mul(t.Price).Mul(t.ExchangeRate)
}

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeDividend,
		TransactionTypeFee, TransactionTypeDeposit, TransactionTypeWithdrawal:
		return true
	}
	return false
}
