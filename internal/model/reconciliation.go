package model

import "time"

// Reconciliation statuses. DISCREPANCY requires an explanatory note;
// resolving a discrepancy returns the row to RECONCILED and preserves the
// original note behind the resolution.
const (
	ReconciliationStatusUnreconciled = "UNRECONCILED"
	ReconciliationStatusPending      = "PENDING"
	ReconciliationStatusReconciled   = "RECONCILED"
	ReconciliationStatusDiscrepancy  = "DISCREPANCY"
)

// Reconciliation links one transaction (1:1) to the journal entry that
// records its effects.
type Reconciliation struct {
	ID             string     `json:"id"`
	TransactionID  string     `json:"transactionId"`
	JournalEntryID string     `json:"journalEntryId"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	ReconciledBy   string     `json:"reconciledBy,omitempty"`
	ReconciledAt   *time.Time `json:"reconciledAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
}

// ValidReconciliationStatus reports whether s is a known status.
func ValidReconciliationStatus(s string) bool {
	switch s {
	case ReconciliationStatusUnreconciled, ReconciliationStatusPending,
		ReconciliationStatusReconciled, ReconciliationStatusDiscrepancy:
		return true
	}
	return false
}

// ReconciliationSummary holds derived reconciliation counts for a portfolio.
// Every number is counted on demand, never cached.
type ReconciliationSummary struct {
	TotalTransactions          int `json:"totalTransactions"`
	ReconciledTransactions     int `json:"reconciledTransactions"`
	UnreconciledTransactions   int `json:"unreconciledTransactions"`
	TotalJournalEntries        int `json:"totalJournalEntries"`
	ReconciledJournalEntries   int `json:"reconciledJournalEntries"`
	UnreconciledJournalEntries int `json:"unreconciledJournalEntries"`
	Discrepancies              int `json:"discrepancies"`
}
