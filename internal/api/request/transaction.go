package request

// CreateTransactionRequest represents the request body for recording a
// brokerage transaction and its ledger effects. Quantity, price and exchange
// rate are decimal strings.
type CreateTransactionRequest struct {
	PortfolioID  string `json:"portfolioId"`
	Ticker       string `json:"ticker,omitempty"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Quantity     string `json:"quantity"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
	ExchangeRate string `json:"exchangeRate,omitempty"`
}
