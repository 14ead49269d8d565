package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the given transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{db: r.db, tx: tx}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `id, portfolio_id, ticker, date, type, quantity, price, currency, exchange_rate, created_at`

func scanTransaction(scan func(dest ...any) error) (model.Transaction, error) {
	var t model.Transaction
	var ticker sql.NullString
	var dateStr, createdAtStr string
	var quantity, price, rate string

	err := scan(
		&t.ID,
		&t.PortfolioID,
		&ticker,
		&dateStr,
		&t.Type,
		&quantity,
		&price,
		&t.Currency,
		&rate,
		&createdAtStr,
	)
	if err != nil {
		return model.Transaction{}, err
	}

	t.Ticker = ticker.String

	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Quantity, err = ParseDecimal(quantity); err != nil {
		return model.Transaction{}, err
	}
	if t.Price, err = ParseDecimal(price); err != nil {
		return model.Transaction{}, err
	}
	if t.ExchangeRate, err = ParseDecimal(rate); err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// Insert persists a new transaction.
func (r *TransactionRepository) Insert(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, portfolio_id, ticker, date, type, quantity, price, currency, exchange_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var ticker any
	if t.Ticker != "" {
		ticker = t.Ticker
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID, t.PortfolioID, ticker, FormatDate(t.Date), t.Type,
		t.Quantity.String(), t.Price.String(), t.Currency, t.ExchangeRate.String())
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// Get retrieves a single transaction by ID.
// Returns apperrors.ErrTransactionNotFound if no row exists.
func (r *TransactionRepository) Get(transactionID string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ?`

	t, err := scanTransaction(r.getQuerier().QueryRow(query, transactionID).Scan)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}
	return t, nil
}

// GetByPortfolio retrieves all transactions for a portfolio sorted by date ascending.
func (r *TransactionRepository) GetByPortfolio(portfolioID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE portfolio_id = ? ORDER BY date ASC, created_at ASC`

	rows, err := r.getQuerier().Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetUnreconciledByPortfolio retrieves transactions that either have no
// reconciliation row or whose reconciliation is UNRECONCILED, sorted by date.
func (r *TransactionRepository) GetUnreconciledByPortfolio(portfolioID string) ([]model.Transaction, error) {
	query := `
		SELECT t.id, t.portfolio_id, t.ticker, t.date, t.type, t.quantity, t.price, t.currency, t.exchange_rate, t.created_at
		FROM "transaction" t
		LEFT JOIN reconciliation rc ON t.id = rc.transaction_id
		WHERE t.portfolio_id = ?
		AND (rc.id IS NULL OR rc.status = ?)
		ORDER BY t.date ASC, t.created_at ASC
	`

	rows, err := r.getQuerier().Query(query, portfolioID, model.ReconciliationStatusUnreconciled)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// Count counts transactions for a portfolio within the optional date range.
func (r *TransactionRepository) Count(portfolioID string, start, end *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM "transaction" WHERE portfolio_id = ?`
	args := []any{portfolioID}

	if start != nil {
		query += ` AND date >= ?`
		args = append(args, FormatDate(*start))
	}
	if end != nil {
		query += ` AND date <= ?`
		args = append(args, FormatDate(*end))
	}

	var count int
	if err := r.getQuerier().QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query transaction table: %w", err)
	}
	return count, nil
}
