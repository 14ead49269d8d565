package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal entry types.
const (
	EntryTypeOpeningBalance = "OPENING_BALANCE"
	EntryTypeTransaction    = "TRANSACTION"
	EntryTypeAdjustment     = "ADJUSTMENT"
	EntryTypeAccrual        = "ACCRUAL"
	EntryTypeReversal       = "REVERSAL"
	EntryTypeClosing        = "CLOSING"
)

// Journal entry statuses. The state machine is DRAFT -> POSTED -> VOIDED.
// Only POSTED entries participate in balance computations.
const (
	EntryStatusDraft  = "DRAFT"
	EntryStatusPosted = "POSTED"
	EntryStatusVoided = "VOIDED"
)

// JournalEntry is a double-entry journal header. EntryNumber is monotonic
// per portfolio. Reference optionally links back to the originating
// transaction ID.
type JournalEntry struct {
	ID          string        `json:"id"`
	PortfolioID string        `json:"portfolioId"`
	EntryNumber int64         `json:"entryNumber"`
	EntryDate   time.Time     `json:"entryDate"`
	Type        string        `json:"type"`
	Status      string        `json:"status"`
	Description string        `json:"description"`
	Reference   string        `json:"reference,omitempty"`
	CreatedAt   time.Time     `json:"createdAt,omitempty"`
	Lines       []JournalLine `json:"lines"`
}

// JournalLine is one side of a journal entry. Exactly one of DebitAmount and
// CreditAmount is positive, or both are zero. Foreign fields are set only for
// cross-currency postings.
type JournalLine struct {
	ID              string              `json:"id"`
	JournalEntryID  string              `json:"journalEntryId"`
	AccountID       string              `json:"accountId"`
	DebitAmount     decimal.Decimal     `json:"debitAmount"`
	CreditAmount    decimal.Decimal     `json:"creditAmount"`
	Currency        string              `json:"currency"`
	ForeignAmount   decimal.NullDecimal `json:"foreignAmount,omitempty"`
	ForeignCurrency string              `json:"foreignCurrency,omitempty"`
	ExchangeRate    decimal.NullDecimal `json:"exchangeRate,omitempty"`
}

// TotalDebits sums the debit side of the entry's lines.
func (e JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.DebitAmount)
	}
	return total
}

// TotalCredits sums the credit side of the entry's lines.
func (e JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.CreditAmount)
	}
	return total
}

// ValidEntryType reports whether t is a known journal entry type.
func ValidEntryType(t string) bool {
	switch t {
	case EntryTypeOpeningBalance, EntryTypeTransaction, EntryTypeAdjustment,
		EntryTypeAccrual, EntryTypeReversal, EntryTypeClosing:
		return true
	}
	return false
}

// LedgerRow is one row of a general-ledger listing for a single account,
// carrying the running balance after applying the row's line.
type LedgerRow struct {
	EntryID     string          `json:"entryId"`
	EntryNumber int64           `json:"entryNumber"`
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}
