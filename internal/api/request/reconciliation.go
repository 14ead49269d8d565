package request

// ReconcileRequest represents the request body for manually linking a
// transaction to a journal entry
type ReconcileRequest struct {
	TransactionID  string `json:"transactionId"`
	JournalEntryID string `json:"journalEntryId"`
	ReconciledBy   string `json:"reconciledBy,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// DiscrepancyRequest represents the request body for flagging a
// reconciliation as a discrepancy
type DiscrepancyRequest struct {
	Note      string `json:"note"`
	FlaggedBy string `json:"flaggedBy,omitempty"`
}

// ResolveDiscrepancyRequest represents the request body for resolving a
// flagged discrepancy
type ResolveDiscrepancyRequest struct {
	Resolution string `json:"resolution"`
	ResolvedBy string `json:"resolvedBy,omitempty"`
}
