package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/repository"
)

// JournalService handles journal-entry business logic: entry creation with
// balance validation, the DRAFT -> POSTED -> VOIDED state machine, account
// balances and the general ledger. Balances are always recomputed from
// POSTED lines; no cached running total is trusted across calls.
type JournalService struct {
	db          *sql.DB
	journalRepo *repository.JournalRepository
	accountRepo *repository.AccountRepository
}

// NewJournalService creates a new JournalService with the provided repository dependencies.
func NewJournalService(
	db *sql.DB,
	journalRepo *repository.JournalRepository,
	accountRepo *repository.AccountRepository,
) *JournalService {
	return &JournalService{
		db:          db,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

// LineInput is one line of a journal entry being created.
type LineInput struct {
	AccountID       string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Currency        string
	ForeignAmount   decimal.NullDecimal
	ForeignCurrency string
	ExchangeRate    decimal.NullDecimal
}

// CreateEntryInput carries the fields needed to create a journal entry.
type CreateEntryInput struct {
	PortfolioID string
	Date        time.Time
	Type        string
	Description string
	Reference   string
	Lines       []LineInput
}

// CreateEntry validates and creates a journal entry in DRAFT status with the
// next sequential entry number for the portfolio, inside its own database
// transaction.
func (s *JournalService) CreateEntry(ctx context.Context, in CreateEntryInput) (*model.JournalEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	entry, err := s.CreateEntryTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// CreateEntryTx is CreateEntry running inside the caller's transaction, so
// that posting a transaction's effects stays atomic end to end.
func (s *JournalService) CreateEntryTx(ctx context.Context, tx *sql.Tx, in CreateEntryInput) (*model.JournalEntry, error) {
	if err := s.validateLines(tx, in.PortfolioID, in.Lines); err != nil {
		return nil, err
	}

	journalRepo := s.journalRepo.WithTx(tx)

	entryNumber, err := journalRepo.NextEntryNumber(ctx, in.PortfolioID)
	if err != nil {
		return nil, err
	}

	entry := &model.JournalEntry{
		ID:          uuid.New().String(),
		PortfolioID: in.PortfolioID,
		EntryNumber: entryNumber,
		EntryDate:   in.Date,
		Type:        in.Type,
		Status:      model.EntryStatusDraft,
		Description: in.Description,
		Reference:   in.Reference,
		CreatedAt:   time.Now().UTC(),
	}

	for _, l := range in.Lines {
		entry.Lines = append(entry.Lines, model.JournalLine{
			ID:              uuid.New().String(),
			AccountID:       l.AccountID,
			DebitAmount:     l.Debit,
			CreditAmount:    l.Credit,
			Currency:        l.Currency,
			ForeignAmount:   l.ForeignAmount,
			ForeignCurrency: l.ForeignCurrency,
			ExchangeRate:    l.ExchangeRate,
		})
	}

	if err := journalRepo.InsertEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// validateLines enforces the line invariants: every account belongs to the
// entry's portfolio and is active, each line has at most one positive side,
// and total debits equal total credits with exact decimal equality.
func (s *JournalService) validateLines(tx *sql.Tx, portfolioID string, lines []LineInput) error {
	accountRepo := s.accountRepo
	if tx != nil {
		accountRepo = accountRepo.WithTx(tx)
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero

	for _, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return apperrors.ErrNegativeAmount
		}
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			return apperrors.ErrBothSidesSet
		}

		account, err := accountRepo.Get(l.AccountID)
		if err != nil {
			return err
		}
		if account.PortfolioID != portfolioID {
			return fmt.Errorf("%w: account %s", apperrors.ErrForeignAccount, l.AccountID)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, l.AccountID)
		}

		totalDebits = totalDebits.Add(l.Debit)
		totalCredits = totalCredits.Add(l.Credit)
	}

	if !totalDebits.Equal(totalCredits) {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry, totalDebits, totalCredits)
	}

	return nil
}

// GetEntry retrieves a journal entry with its lines.
func (s *JournalService) GetEntry(entryID string) (model.JournalEntry, error) {
	return s.journalRepo.GetEntry(entryID)
}

// Post transitions an entry from DRAFT to POSTED, re-validating the balance.
// Returns apperrors.ErrInvalidState if the entry is already POSTED or VOIDED.
func (s *JournalService) Post(ctx context.Context, entryID string) (model.JournalEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	entry, err := s.PostTx(ctx, tx, entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.JournalEntry{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// PostTx is Post running inside the caller's transaction.
func (s *JournalService) PostTx(ctx context.Context, tx *sql.Tx, entryID string) (model.JournalEntry, error) {
	journalRepo := s.journalRepo.WithTx(tx)

	entry, err := journalRepo.GetEntry(entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}

	if entry.Status != model.EntryStatusDraft {
		return model.JournalEntry{}, fmt.Errorf("%w: cannot post %s entry %s", apperrors.ErrInvalidState, entry.Status, entryID)
	}

	// Balance is enforced again at the transition, not merely assumed from
	// creation time.
	if !entry.TotalDebits().Equal(entry.TotalCredits()) {
		return model.JournalEntry{}, fmt.Errorf("%w: debits %s, credits %s",
			apperrors.ErrUnbalancedEntry, entry.TotalDebits(), entry.TotalCredits())
	}

	if err := journalRepo.UpdateStatus(ctx, entryID, model.EntryStatusPosted); err != nil {
		return model.JournalEntry{}, err
	}

	entry.Status = model.EntryStatusPosted
	return entry, nil
}

// Void transitions an entry from POSTED to VOIDED, removing it from all
// balance computations. Drafts cannot be voided; they are simply discarded.
func (s *JournalService) Void(ctx context.Context, entryID string) (model.JournalEntry, error) {
	entry, err := s.journalRepo.GetEntry(entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}

	if entry.Status != model.EntryStatusPosted {
		return model.JournalEntry{}, fmt.Errorf("%w: cannot void %s entry %s", apperrors.ErrInvalidState, entry.Status, entryID)
	}

	if err := s.journalRepo.UpdateStatus(ctx, entryID, model.EntryStatusVoided); err != nil {
		return model.JournalEntry{}, err
	}

	entry.Status = model.EntryStatusVoided
	return entry, nil
}

// AccountBalance recomputes an account's balance from its POSTED lines with
// entry dates up to and including asOf. The sign follows the account's
// normal balance side.
func (s *JournalService) AccountBalance(accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.Get(accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	balance := decimal.Zero
	err = s.journalRepo.ForEachPostedLine(accountID, nil, asOf, func(line repository.PostedLine) error {
		balance = balance.Add(signedAmount(account, line.Debit, line.Credit))
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	return balance, nil
}

// signedAmount folds one line into a balance on the account's normal side.
func signedAmount(account model.Account, debit, credit decimal.Decimal) decimal.Decimal {
	if account.NormalBalance() == model.BalanceDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ForEachLedgerRow streams an account's general ledger ordered by entry date
// then entry number, carrying an incrementally computed running balance.
// When a start date is given the running balance opens with the account's
// activity before that date. Rows are delivered one at a time so arbitrarily
// long ledgers stay bounded in memory; calling again restarts the sequence.
func (s *JournalService) ForEachLedgerRow(accountID string, start, end *time.Time, fn func(model.LedgerRow) error) error {
	account, err := s.accountRepo.Get(accountID)
	if err != nil {
		return err
	}

	balance := decimal.Zero
	if start != nil {
		opening := start.AddDate(0, 0, -1)
		openingBalance, err := s.AccountBalance(accountID, &opening)
		if err != nil {
			return err
		}
		balance = openingBalance
	}

	return s.journalRepo.ForEachPostedLine(accountID, start, end, func(line repository.PostedLine) error {
		balance = balance.Add(signedAmount(account, line.Debit, line.Credit))
		return fn(model.LedgerRow{
			EntryID:     line.EntryID,
			EntryNumber: line.EntryNumber,
			EntryDate:   line.EntryDate,
			Description: line.Description,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Balance:     balance,
		})
	})
}

// GeneralLedger materializes the streamed ledger rows into a slice for API
// responses.
func (s *JournalService) GeneralLedger(accountID string, start, end *time.Time) ([]model.LedgerRow, error) {
	rows := []model.LedgerRow{}
	err := s.ForEachLedgerRow(accountID, start, end, func(row model.LedgerRow) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
