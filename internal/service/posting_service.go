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

// PostingService is the single entry point that turns a brokerage
// transaction into its full set of ledger effects: lot bookkeeping, a
// balanced POSTED journal entry, and the reconciliation link. All of it
// happens inside one database transaction, so a transaction either lands
// with every effect recorded or not at all.
type PostingService struct {
	db                    *sql.DB
	portfolioRepo         *repository.PortfolioRepository
	transactionRepo       *repository.TransactionRepository
	accountRepo           *repository.AccountRepository
	journalService        *JournalService
	lotService            *LotService
	reconciliationService *ReconciliationService
}

// NewPostingService creates a new PostingService with the provided dependencies.
func NewPostingService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
	accountRepo *repository.AccountRepository,
	journalService *JournalService,
	lotService *LotService,
	reconciliationService *ReconciliationService,
) *PostingService {
	return &PostingService{
		db:                    db,
		portfolioRepo:         portfolioRepo,
		transactionRepo:       transactionRepo,
		accountRepo:           accountRepo,
		journalService:        journalService,
		lotService:            lotService,
		reconciliationService: reconciliationService,
	}
}

// RecordTransactionInput carries the fields of a validated brokerage
// transaction to record.
type RecordTransactionInput struct {
	PortfolioID  string
	Ticker       string
	Date         time.Time
	Type         string
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Currency     string
	ExchangeRate decimal.Decimal
}

// TransactionEffects is everything RecordTransactionEffects produced for one
// transaction.
type TransactionEffects struct {
	Transaction    model.Transaction          `json:"transaction"`
	Lot            *model.SecurityLot         `json:"lot,omitempty"`
	Allocations    []model.SecurityAllocation `json:"allocations,omitempty"`
	Entry          *model.JournalEntry        `json:"entry"`
	Reconciliation *model.Reconciliation      `json:"reconciliation"`
}

// RecordTransactionEffects persists the transaction, applies its lot effects
// (a new lot for BUY, FIFO allocations for SELL), creates and posts the
// balanced journal entry referencing the transaction, and reconciles the two,
// all in one database transaction.
func (s *PostingService) RecordTransactionEffects(ctx context.Context, in RecordTransactionInput) (*TransactionEffects, error) {
	if !model.ValidTransactionType(in.Type) {
		return nil, fmt.Errorf("%w: transaction type %q", apperrors.ErrInvalidState, in.Type)
	}
	if in.Quantity.IsNegative() || in.Price.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}

	portfolio, err := s.portfolioRepo.Get(in.PortfolioID)
	if err != nil {
		return nil, err
	}

	rate := in.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	transaction := model.Transaction{
		ID:           uuid.New().String(),
		PortfolioID:  in.PortfolioID,
		Ticker:       in.Ticker,
		Date:         in.Date,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Price:        in.Price,
		Currency:     in.Currency,
		ExchangeRate: rate,
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if err := s.transactionRepo.WithTx(tx).Insert(ctx, &transaction); err != nil {
		return nil, err
	}

	effects := &TransactionEffects{Transaction: transaction}

	lines, err := s.applyEffects(ctx, tx, portfolio, transaction, effects)
	if err != nil {
		return nil, err
	}

	entry, err := s.journalService.CreateEntryTx(ctx, tx, CreateEntryInput{
		PortfolioID: in.PortfolioID,
		Date:        in.Date,
		Type:        model.EntryTypeTransaction,
		Description: describeTransaction(transaction),
		Reference:   transaction.ID,
		Lines:       lines,
	})
	if err != nil {
		return nil, err
	}

	posted, err := s.journalService.PostTx(ctx, tx, entry.ID)
	if err != nil {
		return nil, err
	}
	effects.Entry = &posted

	rec, err := s.reconciliationService.ReconcileTx(ctx, tx, transaction.ID, posted.ID, SystemActor, "")
	if err != nil {
		return nil, err
	}
	effects.Reconciliation = rec

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return effects, nil
}

// applyEffects runs the per-type lot bookkeeping and builds the journal
// lines for the transaction.
func (s *PostingService) applyEffects(ctx context.Context, tx *sql.Tx, portfolio model.Portfolio, t model.Transaction, effects *TransactionEffects) ([]LineInput, error) {
	accountRepo := s.accountRepo.WithTx(tx)

	accountID := func(code string) (string, error) {
		account, err := accountRepo.GetByCode(t.PortfolioID, code)
		if err != nil {
			return "", err
		}
		return account.ID, nil
	}

	baseAmount := round8(t.BaseAmount())

	switch t.Type {
	case model.TransactionTypeBuy:
		lot, err := s.lotService.OpenLotTx(ctx, tx, t)
		if err != nil {
			return nil, err
		}
		effects.Lot = lot
		return s.twoSidedLines(accountID, portfolio, t,
			AccountCodeInvestments, AccountCodeCash, lot.TotalCostBase)

	case model.TransactionTypeSell:
		allocations, err := s.lotService.AllocateSaleTx(ctx, tx, t, baseAmount)
		if err != nil {
			return nil, err
		}
		effects.Allocations = allocations
		return s.sellLines(accountID, portfolio, t, allocations, baseAmount)

	case model.TransactionTypeDividend:
		return s.twoSidedLines(accountID, portfolio, t,
			AccountCodeCash, AccountCodeDividendIncome, baseAmount)

	case model.TransactionTypeFee:
		return s.twoSidedLines(accountID, portfolio, t,
			AccountCodeFees, AccountCodeCash, baseAmount)

	case model.TransactionTypeDeposit:
		return s.twoSidedLines(accountID, portfolio, t,
			AccountCodeCash, AccountCodeOpeningEquity, baseAmount)

	case model.TransactionTypeWithdrawal:
		return s.twoSidedLines(accountID, portfolio, t,
			AccountCodeOpeningEquity, AccountCodeCash, baseAmount)
	}

	return nil, fmt.Errorf("%w: transaction type %q", apperrors.ErrInvalidState, t.Type)
}

// twoSidedLines builds the common debit-one-credit-one entry shape.
func (s *PostingService) twoSidedLines(accountID func(string) (string, error), portfolio model.Portfolio, t model.Transaction, debitCode, creditCode string, amount decimal.Decimal) ([]LineInput, error) {
	debitID, err := accountID(debitCode)
	if err != nil {
		return nil, err
	}
	creditID, err := accountID(creditCode)
	if err != nil {
		return nil, err
	}

	debit := LineInput{AccountID: debitID, Debit: amount, Currency: portfolio.BaseCurrency}
	credit := LineInput{AccountID: creditID, Credit: amount, Currency: portfolio.BaseCurrency}
	annotateForeign(&debit, portfolio, t)
	annotateForeign(&credit, portfolio, t)

	return []LineInput{debit, credit}, nil
}

// sellLines splits a sale's proceeds into cash received, cost basis released
// from the investments account, and the realized gain or loss.
func (s *PostingService) sellLines(accountID func(string) (string, error), portfolio model.Portfolio, t model.Transaction, allocations []model.SecurityAllocation, proceedsBase decimal.Decimal) ([]LineInput, error) {
	totalCost := decimal.Zero
	for _, a := range allocations {
		totalCost = totalCost.Add(a.CostBasis)
	}
	gain := proceedsBase.Sub(totalCost)

	cashID, err := accountID(AccountCodeCash)
	if err != nil {
		return nil, err
	}
	investmentsID, err := accountID(AccountCodeInvestments)
	if err != nil {
		return nil, err
	}

	cash := LineInput{AccountID: cashID, Debit: proceedsBase, Currency: portfolio.BaseCurrency}
	investments := LineInput{AccountID: investmentsID, Credit: totalCost, Currency: portfolio.BaseCurrency}
	annotateForeign(&cash, portfolio, t)

	lines := []LineInput{cash, investments}

	switch {
	case gain.IsPositive():
		gainsID, err := accountID(AccountCodeRealizedGains)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineInput{AccountID: gainsID, Credit: gain, Currency: portfolio.BaseCurrency})
	case gain.IsNegative():
		lossesID, err := accountID(AccountCodeRealizedLosses)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineInput{AccountID: lossesID, Debit: gain.Neg(), Currency: portfolio.BaseCurrency})
	}

	return lines, nil
}

// annotateForeign records the original-currency amount and rate on a line
// when the transaction settled in a currency other than the portfolio base.
func annotateForeign(line *LineInput, portfolio model.Portfolio, t model.Transaction) {
	if t.Currency == "" || t.Currency == portfolio.BaseCurrency {
		return
	}
	line.ForeignAmount = decimal.NewNullDecimal(round8(t.GrossAmount()))
	line.ForeignCurrency = t.Currency
	line.ExchangeRate = decimal.NewNullDecimal(t.ExchangeRate)
}

func describeTransaction(t model.Transaction) string {
	switch t.Type {
	case model.TransactionTypeBuy, model.TransactionTypeSell:
		return fmt.Sprintf("%s %s %s @ %s %s", t.Type, t.Quantity, t.Ticker, t.Price, t.Currency)
	case model.TransactionTypeDividend:
		return fmt.Sprintf("DIVIDEND %s %s %s", t.Ticker, t.GrossAmount(), t.Currency)
	default:
		return fmt.Sprintf("%s %s %s", t.Type, t.GrossAmount(), t.Currency)
	}
}

// GetTransaction retrieves a single transaction by ID.
func (s *PostingService) GetTransaction(transactionID string) (model.Transaction, error) {
	return s.transactionRepo.Get(transactionID)
}

// GetTransactions retrieves all transactions for a portfolio sorted by date.
func (s *PostingService) GetTransactions(portfolioID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetByPortfolio(portfolioID)
}
