package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityLot is a discrete purchase batch of a security, created 1:1 from a
// BUY transaction and consumed FIFO by later sales. Costs are tracked both in
// the transaction currency and in the portfolio base currency.
type SecurityLot struct {
	ID                string          `json:"id"`
	PortfolioID       string          `json:"portfolioId"`
	TransactionID     string          `json:"transactionId"`
	Ticker            string          `json:"ticker"`
	PurchaseDate      time.Time       `json:"purchaseDate"`
	Quantity          decimal.Decimal `json:"quantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	CostPerShare      decimal.Decimal `json:"costPerShare"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	CostPerShareBase  decimal.Decimal `json:"costPerShareBase"`
	TotalCostBase     decimal.Decimal `json:"totalCostBase"`
	ExchangeRate      decimal.Decimal `json:"exchangeRate"`
	IsClosed          bool            `json:"isClosed"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}

// SecurityAllocation records how much of one lot a SELL transaction
// consumed. All amounts are in the portfolio base currency.
type SecurityAllocation struct {
	ID                string          `json:"id"`
	LotID             string          `json:"lotId"`
	TransactionID     string          `json:"transactionId"`
	QuantityAllocated decimal.Decimal `json:"quantityAllocated"`
	CostBasis         decimal.Decimal `json:"costBasis"`
	Proceeds          decimal.Decimal `json:"proceeds"`
	RealizedGainLoss  decimal.Decimal `json:"realizedGainLoss"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}
