package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// JournalRepository provides data access methods for the journal_entry and
// journal_line tables.
type JournalRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewJournalRepository creates a new JournalRepository with the provided database connection.
func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the given transaction.
func (r *JournalRepository) WithTx(tx *sql.Tx) *JournalRepository {
	return &JournalRepository{db: r.db, tx: tx}
}

func (r *JournalRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// NextEntryNumber returns the next unused entry number for a portfolio.
// Must be called inside the same transaction as the subsequent InsertEntry.
func (r *JournalRepository) NextEntryNumber(ctx context.Context, portfolioID string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(entry_number), 0) + 1
		FROM journal_entry
		WHERE portfolio_id = ?
	`

	var next int64
	if err := r.getQuerier().QueryRowContext(ctx, query, portfolioID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to query journal_entry table: %w", err)
	}
	return next, nil
}

// InsertEntry persists a journal entry header and all of its lines.
func (r *JournalRepository) InsertEntry(ctx context.Context, e *model.JournalEntry) error {
	entryQuery := `
		INSERT INTO journal_entry (id, portfolio_id, entry_number, entry_date, type, status, description, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reference any
	if e.Reference != "" {
		reference = e.Reference
	}

	_, err := r.getQuerier().ExecContext(ctx, entryQuery,
		e.ID, e.PortfolioID, e.EntryNumber, FormatDate(e.EntryDate), e.Type, e.Status, e.Description, reference)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	lineQuery := `
		INSERT INTO journal_line (id, journal_entry_id, account_id, debit_amount, credit_amount, currency, foreign_amount, foreign_currency, exchange_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i := range e.Lines {
		l := &e.Lines[i]
		l.JournalEntryID = e.ID

		var foreignAmount, foreignCurrency, exchangeRate any
		if l.ForeignAmount.Valid {
			foreignAmount = l.ForeignAmount.Decimal.String()
		}
		if l.ForeignCurrency != "" {
			foreignCurrency = l.ForeignCurrency
		}
		if l.ExchangeRate.Valid {
			exchangeRate = l.ExchangeRate.Decimal.String()
		}

		_, err := r.getQuerier().ExecContext(ctx, lineQuery,
			l.ID, l.JournalEntryID, l.AccountID,
			l.DebitAmount.String(), l.CreditAmount.String(), l.Currency,
			foreignAmount, foreignCurrency, exchangeRate)
		if err != nil {
			return fmt.Errorf("failed to insert journal line: %w", err)
		}
	}

	return nil
}

// GetEntry retrieves a journal entry with its lines.
// Returns apperrors.ErrJournalEntryNotFound if no row exists.
func (r *JournalRepository) GetEntry(entryID string) (model.JournalEntry, error) {
	entryQuery := `
		SELECT id, portfolio_id, entry_number, entry_date, type, status, description, reference, created_at
		FROM journal_entry
		WHERE id = ?
	`

	var e model.JournalEntry
	var description, reference sql.NullString
	var dateStr, createdAtStr string

	err := r.getQuerier().QueryRow(entryQuery, entryID).Scan(
		&e.ID,
		&e.PortfolioID,
		&e.EntryNumber,
		&dateStr,
		&e.Type,
		&e.Status,
		&description,
		&reference,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.JournalEntry{}, apperrors.ErrJournalEntryNotFound
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("failed to scan journal_entry table results: %w", err)
	}

	e.Description = description.String
	e.Reference = reference.String

	e.EntryDate, err = ParseTime(dateStr)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.JournalEntry{}, err
	}

	e.Lines, err = r.getLines(entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}

	return e, nil
}

func (r *JournalRepository) getLines(entryID string) ([]model.JournalLine, error) {
	query := `
		SELECT id, journal_entry_id, account_id, debit_amount, credit_amount, currency, foreign_amount, foreign_currency, exchange_rate
		FROM journal_line
		WHERE journal_entry_id = ?
		ORDER BY rowid ASC
	`

	rows, err := r.getQuerier().Query(query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal_line table: %w", err)
	}
	defer rows.Close()

	lines := []model.JournalLine{}
	for rows.Next() {
		var l model.JournalLine
		var debitStr, creditStr string
		var foreignAmount, foreignCurrency, exchangeRate sql.NullString

		err := rows.Scan(
			&l.ID,
			&l.JournalEntryID,
			&l.AccountID,
			&debitStr,
			&creditStr,
			&l.Currency,
			&foreignAmount,
			&foreignCurrency,
			&exchangeRate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal_line table results: %w", err)
		}

		if l.DebitAmount, err = ParseDecimal(debitStr); err != nil {
			return nil, err
		}
		if l.CreditAmount, err = ParseDecimal(creditStr); err != nil {
			return nil, err
		}
		if foreignAmount.Valid {
			d, err := ParseDecimal(foreignAmount.String)
			if err != nil {
				return nil, err
			}
			l.ForeignAmount = decimal.NewNullDecimal(d)
		}
		l.ForeignCurrency = foreignCurrency.String
		if exchangeRate.Valid {
			d, err := ParseDecimal(exchangeRate.String)
			if err != nil {
				return nil, err
			}
			l.ExchangeRate = decimal.NewNullDecimal(d)
		}

		lines = append(lines, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal_line table: %w", err)
	}

	return lines, nil
}

// UpdateStatus sets a journal entry's status.
// Returns apperrors.ErrJournalEntryNotFound if no row was updated.
func (r *JournalRepository) UpdateStatus(ctx context.Context, entryID, status string) error {
	result, err := r.getQuerier().ExecContext(ctx, `UPDATE journal_entry SET status = ? WHERE id = ?`, status, entryID)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrJournalEntryNotFound
	}
	return nil
}

// PostedLine is one posted journal line joined with its entry header, as
// consumed by balance computations and the general ledger.
type PostedLine struct {
	EntryID     string
	EntryNumber int64
	EntryDate   time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// ForEachPostedLine streams the POSTED lines of an account ordered by entry
// date then entry number, bounded by the optional start and end dates
// (inclusive). Rows are delivered one at a time so large ledgers never
// materialize in memory; amounts are summed in exact decimal by the caller.
func (r *JournalRepository) ForEachPostedLine(accountID string, start, end *time.Time, fn func(PostedLine) error) error {
	query := `
		SELECT e.id, e.entry_number, e.entry_date, e.description, l.debit_amount, l.credit_amount
		FROM journal_line l
		JOIN journal_entry e ON l.journal_entry_id = e.id
		WHERE l.account_id = ?
		AND e.status = ?
	`
	args := []any{accountID, model.EntryStatusPosted}

	if start != nil {
		query += ` AND e.entry_date >= ?`
		args = append(args, FormatDate(*start))
	}
	if end != nil {
		query += ` AND e.entry_date <= ?`
		args = append(args, FormatDate(*end))
	}
	query += ` ORDER BY e.entry_date ASC, e.entry_number ASC, l.rowid ASC`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query journal_line table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PostedLine
		var description sql.NullString
		var dateStr, debitStr, creditStr string

		if err := rows.Scan(&p.EntryID, &p.EntryNumber, &dateStr, &description, &debitStr, &creditStr); err != nil {
			return fmt.Errorf("failed to scan journal_line table results: %w", err)
		}

		p.Description = description.String
		if p.EntryDate, err = ParseTime(dateStr); err != nil {
			return err
		}
		if p.Debit, err = ParseDecimal(debitStr); err != nil {
			return err
		}
		if p.Credit, err = ParseDecimal(creditStr); err != nil {
			return err
		}

		if err := fn(p); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating journal_line table: %w", err)
	}

	return nil
}

// FindPostedIDsByReference returns the IDs of POSTED entries in a portfolio
// whose reference equals the given value.
func (r *JournalRepository) FindPostedIDsByReference(portfolioID, reference string) ([]string, error) {
	query := `
		SELECT id
		FROM journal_entry
		WHERE portfolio_id = ? AND reference = ? AND status = ?
	`

	rows, err := r.getQuerier().Query(query, portfolioID, reference, model.EntryStatusPosted)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal_entry table: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan journal_entry table results: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal_entry table: %w", err)
	}

	return ids, nil
}

// CountEntries counts journal entries for a portfolio within the optional
// date range, excluding VOIDED entries.
func (r *JournalRepository) CountEntries(portfolioID string, start, end *time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM journal_entry
		WHERE portfolio_id = ? AND status != ?
	`
	args := []any{portfolioID, model.EntryStatusVoided}

	if start != nil {
		query += ` AND entry_date >= ?`
		args = append(args, FormatDate(*start))
	}
	if end != nil {
		query += ` AND entry_date <= ?`
		args = append(args, FormatDate(*end))
	}

	var count int
	if err := r.getQuerier().QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query journal_entry table: %w", err)
	}
	return count, nil
}
