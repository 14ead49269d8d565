package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrAccountNotFound indicates that an account with the given ID or code does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrJournalEntryNotFound indicates that a journal entry with the given ID does not exist.
	ErrJournalEntryNotFound = errors.New("journal entry not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLotNotFound indicates that a security lot with the given ID does not exist.
	ErrLotNotFound = errors.New("security lot not found")

	// ErrReconciliationNotFound indicates that a reconciliation record does not exist.
	ErrReconciliationNotFound = errors.New("reconciliation not found")
)

// Business logic errors represent structural-invariant violations.
// None of these are retried; they surface to the caller as definite failures.
var (
	// ErrDuplicateAccount indicates that an account with the same code or name
	// already exists in the portfolio.
	ErrDuplicateAccount = errors.New("duplicate account code or name")

	// ErrDuplicateLot indicates that a lot already exists for the BUY transaction.
	ErrDuplicateLot = errors.New("lot already exists for transaction")

	// ErrUnbalancedEntry indicates that an entry's debits do not equal its credits.
	ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")

	// ErrInvalidState indicates an illegal state transition, such as posting an
	// already-posted entry or voiding a draft.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrInsufficientLots indicates that a sale exceeds the tracked open-lot
	// quantity. No allocation is performed in that case.
	ErrInsufficientLots = errors.New("insufficient open lots for sale")

	// ErrBothSidesSet indicates a journal line with both a debit and a credit amount.
	ErrBothSidesSet = errors.New("journal line cannot have both debit and credit amounts")

	// ErrNegativeAmount indicates an amount field with an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAccountInactive indicates a posting against a deactivated account.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrForeignAccount indicates a journal line referencing an account that
	// belongs to a different portfolio than the entry.
	ErrForeignAccount = errors.New("account belongs to a different portfolio")

	// ErrSystemAccount indicates an attempt to deactivate a system account.
	ErrSystemAccount = errors.New("system account cannot be deactivated")

	// ErrParentCycle indicates that setting the requested parent would create
	// a cycle in the account tree.
	ErrParentCycle = errors.New("account parent chain would form a cycle")

	// ErrNoteRequired indicates that a discrepancy was filed without a note.
	ErrNoteRequired = errors.New("discrepancy note is required")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Data integrity errors indicate corrupted financial state. They are raised,
// never silently displayed, because they mean an invariant already broke
// upstream.
var (
	// ErrTrialBalanceOutOfBalance indicates that the trial balance debit and
	// credit columns differ, meaning an unbalanced entry slipped through.
	ErrTrialBalanceOutOfBalance = errors.New("trial balance columns do not match")

	// ErrAccountingEquation indicates assets != liabilities + equity.
	ErrAccountingEquation = errors.New("accounting equation does not hold")

	// ErrDataInconsistency indicates that the data is in an inconsistent state.
	ErrDataInconsistency = errors.New("data inconsistency detected")
)

// Operation failure errors represent system-level failures when retrieving
// or processing data.
var (
	ErrFailedToRetrievePortfolios     = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrieveAccounts       = errors.New("failed to retrieve accounts")
	ErrFailedToRetrieveJournalEntry   = errors.New("failed to retrieve journal entry")
	ErrFailedToRetrieveLedger         = errors.New("failed to retrieve general ledger")
	ErrFailedToRetrieveTransactions   = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveLots           = errors.New("failed to retrieve security lots")
	ErrFailedToRetrieveAllocations    = errors.New("failed to retrieve allocations")
	ErrFailedToRetrieveReconciliation = errors.New("failed to retrieve reconciliation")
	ErrFailedToGenerateReport         = errors.New("failed to generate report")
)
