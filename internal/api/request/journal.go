package request

// JournalLineRequest is one line of a journal entry being created. Amounts
// are decimal strings so precision survives the JSON round trip.
type JournalLineRequest struct {
	AccountID       string `json:"accountId"`
	Debit           string `json:"debit,omitempty"`
	Credit          string `json:"credit,omitempty"`
	Currency        string `json:"currency,omitempty"`
	ForeignAmount   string `json:"foreignAmount,omitempty"`
	ForeignCurrency string `json:"foreignCurrency,omitempty"`
	ExchangeRate    string `json:"exchangeRate,omitempty"`
}

// CreateJournalEntryRequest represents the request body for creating a draft
// journal entry
type CreateJournalEntryRequest struct {
	PortfolioID string               `json:"portfolioId"`
	Date        string               `json:"date"`
	Type        string               `json:"type"`
	Description string               `json:"description"`
	Reference   string               `json:"reference,omitempty"`
	Lines       []JournalLineRequest `json:"lines"`
}
