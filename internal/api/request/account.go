package request

// CreateAccountRequest represents the request body for creating a chart account
type CreateAccountRequest struct {
	PortfolioID string `json:"portfolioId"`
	ParentID    string `json:"parentId,omitempty"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	Currency    string `json:"currency"`
}
