package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithBaseCurrency("EUR").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID           string
	Name         string
	Description  string
	BaseCurrency string
	IsArchived   bool
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:           MakeID(),
		Name:         MakePortfolioName("Test Portfolio"),
		Description:  "Test description",
		BaseCurrency: "USD",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithBaseCurrency sets a custom base currency.
func (b *PortfolioBuilder) WithBaseCurrency(currency string) *PortfolioBuilder {
	b.BaseCurrency = currency
	return b
}

// Archived marks the portfolio as archived.
func (b *PortfolioBuilder) Archived() *PortfolioBuilder {
	b.IsArchived = true
	return b
}

// Build creates the portfolio in the database and returns it. No chart is
// seeded; use the portfolio service when system accounts are needed.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, name, description, base_currency, is_archived)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Description, b.BaseCurrency, b.IsArchived)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		BaseCurrency: b.BaseCurrency,
		IsArchived:   b.IsArchived,
	}
}

// AccountBuilder provides a fluent interface for creating test chart accounts.
//
// Example usage:
//
//	account := testutil.NewAccount(portfolio.ID).
//	    WithCode("1000").
//	    WithType(model.AccountTypeAsset).
//	    Build(t, db)
type AccountBuilder struct {
	ID          string
	PortfolioID string
	ParentID    string
	Code        string
	Name        string
	Type        string
	Category    string
	Currency    string
	IsActive    bool
	IsSystem    bool
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount(portfolioID string) *AccountBuilder {
	return &AccountBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Code:        randomAlphanumeric(4),
		Name:        MakeAccountName("Test Account"),
		Type:        model.AccountTypeAsset,
		Currency:    "USD",
		IsActive:    true,
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithParent sets the parent account.
func (b *AccountBuilder) WithParent(parentID string) *AccountBuilder {
	b.ParentID = parentID
	return b
}

// WithCode sets a custom account code.
func (b *AccountBuilder) WithCode(code string) *AccountBuilder {
	b.Code = code
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// WithType sets the account type.
func (b *AccountBuilder) WithType(accountType string) *AccountBuilder {
	b.Type = accountType
	return b
}

// WithCurrency sets the account currency.
func (b *AccountBuilder) WithCurrency(currency string) *AccountBuilder {
	b.Currency = currency
	return b
}

// Inactive marks the account as deactivated.
func (b *AccountBuilder) Inactive() *AccountBuilder {
	b.IsActive = false
	return b
}

// System marks the account as a seeded system account.
func (b *AccountBuilder) System() *AccountBuilder {
	b.IsSystem = true
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	var parentID any
	if b.ParentID != "" {
		parentID = b.ParentID
	}
	var category any
	if b.Category != "" {
		category = b.Category
	}

	query := `
		INSERT INTO account (id, portfolio_id, parent_id, code, name, type, category, currency, is_active, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, parentID, b.Code, b.Name, b.Type, category, b.Currency, b.IsActive, b.IsSystem)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		ParentID:    b.ParentID,
		Code:        b.Code,
		Name:        b.Name,
		Type:        b.Type,
		Category:    b.Category,
		Currency:    b.Currency,
		IsActive:    b.IsActive,
		IsSystem:    b.IsSystem,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transactions directly in the database, bypassing the posting pipeline.
//
// Example usage:
//
//	buy := testutil.NewTransaction(portfolio.ID).
//	    WithTicker("AAPL").
//	    WithType(model.TransactionTypeBuy).
//	    WithQuantity("10").
//	    WithPrice("150").
//	    Build(t, db)
type TransactionBuilder struct {
	ID           string
	PortfolioID  string
	Ticker       string
	Date         time.Time
	Type         string
	Quantity     string
	Price        string
	Currency     string
	ExchangeRate string
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(portfolioID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:           MakeID(),
		PortfolioID:  portfolioID,
		Ticker:       MakeTicker(""),
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Type:         model.TransactionTypeBuy,
		Quantity:     "10",
		Price:        "100",
		Currency:     "USD",
		ExchangeRate: "1",
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithTicker sets the ticker symbol.
func (b *TransactionBuilder) WithTicker(ticker string) *TransactionBuilder {
	b.Ticker = ticker
	return b
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithType sets the transaction type.
func (b *TransactionBuilder) WithType(transactionType string) *TransactionBuilder {
	b.Type = transactionType
	return b
}

// WithQuantity sets the quantity as a decimal string.
func (b *TransactionBuilder) WithQuantity(quantity string) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithPrice sets the per-unit price as a decimal string.
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.Price = price
	return b
}

// WithCurrency sets the transaction currency.
func (b *TransactionBuilder) WithCurrency(currency string) *TransactionBuilder {
	b.Currency = currency
	return b
}

// WithExchangeRate sets the conversion rate to the base currency.
func (b *TransactionBuilder) WithExchangeRate(rate string) *TransactionBuilder {
	b.ExchangeRate = rate
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	var ticker any
	if b.Ticker != "" {
		ticker = b.Ticker
	}

	query := `
		INSERT INTO "transaction" (id, portfolio_id, ticker, date, type, quantity, price, currency, exchange_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, ticker, b.Date.Format("2006-01-02"), b.Type,
		b.Quantity, b.Price, b.Currency, b.ExchangeRate)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:           b.ID,
		PortfolioID:  b.PortfolioID,
		Ticker:       b.Ticker,
		Date:         b.Date,
		Type:         b.Type,
		Quantity:     mustDecimal(t, b.Quantity),
		Price:        mustDecimal(t, b.Price),
		Currency:     b.Currency,
		ExchangeRate: mustDecimal(t, b.ExchangeRate),
	}
}

// mustDecimal parses a decimal string, failing the test on bad input.
func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("Failed to parse decimal %q: %v", value, err)
	}
	return d
}

// Convenience functions

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}
