package model

import "time"

// Account types classify chart-of-accounts nodes and determine the side on
// which the account naturally increases.
const (
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
	AccountTypeEquity    = "EQUITY"
	AccountTypeRevenue   = "REVENUE"
	AccountTypeExpense   = "EXPENSE"
)

// Normal balance sides.
const (
	BalanceDebit  = "DEBIT"
	BalanceCredit = "CREDIT"
)

// Account is a node in a portfolio's chart of accounts. Code and name are
// unique per portfolio. System accounts are seeded at portfolio creation and
// cannot be deactivated.
type Account struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	ParentID    string    `json:"parentId,omitempty"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Category    string    `json:"category,omitempty"`
	Currency    string    `json:"currency"`
	IsActive    bool      `json:"isActive"`
	IsSystem    bool      `json:"isSystem"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// NormalBalance returns the side on which this account type increases.
// ASSET and EXPENSE accounts are debit-normal; all others are credit-normal.
func (a Account) NormalBalance() string {
	switch a.Type {
	case AccountTypeAsset, AccountTypeExpense:
		return BalanceDebit
	default:
		return BalanceCredit
	}
}

// ValidAccountType reports whether t is one of the five account types.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// AccountResponse is an account enriched with its dot-joined full code for
// API responses.
type AccountResponse struct {
	Account
	FullCode string `json:"fullCode"`
}
