package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the given transaction.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: r.db, tx: tx}
}

func (r *AccountRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanAccount(scan func(dest ...any) error) (model.Account, error) {
	var a model.Account
	var parentID sql.NullString
	var category sql.NullString
	var createdAtStr string

	err := scan(
		&a.ID,
		&a.PortfolioID,
		&parentID,
		&a.Code,
		&a.Name,
		&a.Type,
		&category,
		&a.Currency,
		&a.IsActive,
		&a.IsSystem,
		&createdAtStr,
	)
	if err != nil {
		return model.Account{}, err
	}

	if parentID.Valid {
		a.ParentID = parentID.String
	}
	if category.Valid {
		a.Category = category.String
	}

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Account{}, err
	}

	return a, nil
}

const accountColumns = `id, portfolio_id, parent_id, code, name, type, category, currency, is_active, is_system, created_at`

// Insert persists a new account.
func (r *AccountRepository) Insert(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO account (id, portfolio_id, parent_id, code, name, type, category, currency, is_active, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var parentID any
	if a.ParentID != "" {
		parentID = a.ParentID
	}
	var category any
	if a.Category != "" {
		category = a.Category
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID, a.PortfolioID, parentID, a.Code, a.Name, a.Type, category, a.Currency, a.IsActive, a.IsSystem)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Get retrieves a single account by ID.
// Returns apperrors.ErrAccountNotFound if no row exists.
func (r *AccountRepository) Get(accountID string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE id = ?`

	a, err := scanAccount(r.getQuerier().QueryRow(query, accountID).Scan)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account table results: %w", err)
	}
	return a, nil
}

// GetByCode retrieves the account with the given code within a portfolio.
// Returns apperrors.ErrAccountNotFound if no row exists.
func (r *AccountRepository) GetByCode(portfolioID, code string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE portfolio_id = ? AND code = ?`

	a, err := scanAccount(r.getQuerier().QueryRow(query, portfolioID, code).Scan)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account table results: %w", err)
	}
	return a, nil
}

// GetByPortfolio retrieves all accounts of a portfolio ordered by code.
// When activeOnly is true, deactivated accounts are excluded.
func (r *AccountRepository) GetByPortfolio(portfolioID string, activeOnly bool) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE portfolio_id = ?`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY code ASC`

	rows, err := r.getQuerier().Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// ExistsByCodeOrName reports whether an account with the given code or name
// already exists in the portfolio.
func (r *AccountRepository) ExistsByCodeOrName(portfolioID, code, name string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM account
		WHERE portfolio_id = ? AND (code = ? OR name = ?)
	`

	var count int
	if err := r.getQuerier().QueryRow(query, portfolioID, code, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query account table: %w", err)
	}
	return count > 0, nil
}

// SetActive toggles an account's active flag.
// Returns apperrors.ErrAccountNotFound if no row was updated.
func (r *AccountRepository) SetActive(ctx context.Context, accountID string, active bool) error {
	result, err := r.getQuerier().ExecContext(ctx, `UPDATE account SET is_active = ? WHERE id = ?`, active, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
