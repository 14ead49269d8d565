package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/repository"
)

// System account codes seeded for every portfolio. RecordTransactionEffects
// resolves posting targets through these codes.
const (
	AccountCodeCash           = "1000"
	AccountCodeInvestments    = "1100"
	AccountCodeOpeningEquity  = "3000"
	AccountCodeRealizedGains  = "4000"
	AccountCodeDividendIncome = "4100"
	AccountCodeRealizedLosses = "5000"
	AccountCodeFees           = "5100"
)

// ChartService handles chart-of-accounts business logic.
type ChartService struct {
	db          *sql.DB
	accountRepo *repository.AccountRepository
}

// NewChartService creates a new ChartService with the provided repository dependencies.
func NewChartService(db *sql.DB, accountRepo *repository.AccountRepository) *ChartService {
	return &ChartService{
		db:          db,
		accountRepo: accountRepo,
	}
}

// CreateAccountInput carries the fields needed to create a chart account.
type CreateAccountInput struct {
	PortfolioID string
	ParentID    string
	Code        string
	Name        string
	Type        string
	Category    string
	Currency    string
}

// CreateAccount creates a new account in a portfolio's chart.
// Returns apperrors.ErrDuplicateAccount if the code or name is already taken
// within the portfolio, and apperrors.ErrParentCycle if the requested parent
// chain would loop back onto the new account's ancestors.
func (s *ChartService) CreateAccount(ctx context.Context, in CreateAccountInput) (*model.Account, error) {
	exists, err := s.accountRepo.ExistsByCodeOrName(in.PortfolioID, in.Code, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: code %q or name %q in portfolio %s", apperrors.ErrDuplicateAccount, in.Code, in.Name, in.PortfolioID)
	}

	if in.ParentID != "" {
		parent, err := s.accountRepo.Get(in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PortfolioID != in.PortfolioID {
			return nil, apperrors.ErrForeignAccount
		}
		if err := s.checkAncestry(in.ParentID); err != nil {
			return nil, err
		}
	}

	account := &model.Account{
		ID:          uuid.New().String(),
		PortfolioID: in.PortfolioID,
		ParentID:    in.ParentID,
		Code:        in.Code,
		Name:        in.Name,
		Type:        in.Type,
		Category:    in.Category,
		Currency:    in.Currency,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.accountRepo.Insert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// checkAncestry walks the parent chain from the given account to the root
// and fails if it revisits a node, which would make FullCode loop forever.
func (s *ChartService) checkAncestry(accountID string) error {
	seen := map[string]bool{}
	current := accountID

	for current != "" {
		if seen[current] {
			return apperrors.ErrParentCycle
		}
		seen[current] = true

		account, err := s.accountRepo.Get(current)
		if err != nil {
			return err
		}
		current = account.ParentID
	}

	return nil
}

// GetAccount retrieves a single account by ID.
func (s *ChartService) GetAccount(accountID string) (model.Account, error) {
	return s.accountRepo.Get(accountID)
}

// GetChart retrieves a portfolio's accounts with their full codes, ordered by code.
func (s *ChartService) GetChart(portfolioID string) ([]model.AccountResponse, error) {
	accounts, err := s.accountRepo.GetByPortfolio(portfolioID, false)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	responses := make([]model.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, model.AccountResponse{
			Account:  a,
			FullCode: fullCode(a, byID),
		})
	}

	return responses, nil
}

// FullCode returns the dot-joined ancestor codes of an account, walking the
// parent chain to the root.
func (s *ChartService) FullCode(accountID string) (string, error) {
	account, err := s.accountRepo.Get(accountID)
	if err != nil {
		return "", err
	}

	codes := []string{account.Code}
	for account.ParentID != "" {
		account, err = s.accountRepo.Get(account.ParentID)
		if err != nil {
			return "", err
		}
		codes = append([]string{account.Code}, codes...)
	}

	return strings.Join(codes, "."), nil
}

func fullCode(a model.Account, byID map[string]model.Account) string {
	codes := []string{a.Code}
	for a.ParentID != "" {
		parent, ok := byID[a.ParentID]
		if !ok {
			break
		}
		codes = append([]string{parent.Code}, codes...)
		a = parent
	}
	return strings.Join(codes, ".")
}

// DeactivateAccount soft-deactivates an account. Accounts referenced by
// journal lines are never hard-deleted.
// Returns apperrors.ErrSystemAccount for seeded system accounts.
func (s *ChartService) DeactivateAccount(ctx context.Context, accountID string) error {
	account, err := s.accountRepo.Get(accountID)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return apperrors.ErrSystemAccount
	}

	return s.accountRepo.SetActive(ctx, accountID, false)
}

// SeedDefaultChart creates the system accounts for a new portfolio inside the
// caller's transaction.
func (s *ChartService) SeedDefaultChart(ctx context.Context, tx *sql.Tx, portfolioID, currency string) error {
	defaults := []struct {
		code     string
		name     string
		accType  string
		category string
	}{
		{AccountCodeCash, "Cash", model.AccountTypeAsset, "CASH"},
		{AccountCodeInvestments, "Investments", model.AccountTypeAsset, "SECURITIES"},
		{AccountCodeOpeningEquity, "Opening Balance Equity", model.AccountTypeEquity, "CONTRIBUTED"},
		{AccountCodeRealizedGains, "Realized Gains", model.AccountTypeRevenue, "CAPITAL_GAINS"},
		{AccountCodeDividendIncome, "Dividend Income", model.AccountTypeRevenue, "DIVIDENDS"},
		{AccountCodeRealizedLosses, "Realized Losses", model.AccountTypeExpense, "CAPITAL_LOSSES"},
		{AccountCodeFees, "Fees", model.AccountTypeExpense, "FEES"},
	}

	repo := s.accountRepo.WithTx(tx)
	for _, d := range defaults {
		account := &model.Account{
			ID:          uuid.New().String(),
			PortfolioID: portfolioID,
			Code:        d.code,
			Name:        d.name,
			Type:        d.accType,
			Category:    d.category,
			Currency:    currency,
			IsActive:    true,
			IsSystem:    true,
		}
		if err := repo.Insert(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", d.code, err)
		}
	}

	return nil
}
