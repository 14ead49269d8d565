package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportLine is one account's contribution to a financial report.
type ReportLine struct {
	AccountID string          `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// TrialBalanceRow places an account's signed balance into the debit or
// credit column according to its normal balance side.
type TrialBalanceRow struct {
	AccountID string          `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance lists every active account's balance as of a date. The debit
// and credit column totals are equal by construction of double-entry
// bookkeeping; a mismatch is an integrity error, not report output.
type TrialBalance struct {
	PortfolioID  string            `json:"portfolioId"`
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
}

// IncomeStatement nets revenue and expense activity strictly within
// [Start, End].
type IncomeStatement struct {
	PortfolioID   string          `json:"portfolioId"`
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	Revenue       []ReportLine    `json:"revenue"`
	Expenses      []ReportLine    `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheet nets asset, liability and equity balances as of a date.
// Equity includes a derived current-earnings line so that the accounting
// equation holds without a closing entry.
type BalanceSheet struct {
	PortfolioID      string          `json:"portfolioId"`
	AsOf             time.Time       `json:"asOf"`
	Assets           []ReportLine    `json:"assets"`
	Liabilities      []ReportLine    `json:"liabilities"`
	Equity           []ReportLine    `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}
