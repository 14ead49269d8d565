package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// ReconciliationRepository provides data access methods for the reconciliation table.
type ReconciliationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewReconciliationRepository creates a new ReconciliationRepository with the provided database connection.
func NewReconciliationRepository(db *sql.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the given transaction.
func (r *ReconciliationRepository) WithTx(tx *sql.Tx) *ReconciliationRepository {
	return &ReconciliationRepository{db: r.db, tx: tx}
}

func (r *ReconciliationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanReconciliation(scan func(dest ...any) error) (model.Reconciliation, error) {
	var rec model.Reconciliation
	var notes, reconciledBy, reconciledAt sql.NullString
	var createdAtStr string

	err := scan(
		&rec.ID,
		&rec.TransactionID,
		&rec.JournalEntryID,
		&rec.Status,
		&notes,
		&reconciledBy,
		&reconciledAt,
		&createdAtStr,
	)
	if err != nil {
		return model.Reconciliation{}, err
	}

	rec.Notes = notes.String
	rec.ReconciledBy = reconciledBy.String

	if reconciledAt.Valid {
		t, err := ParseTime(reconciledAt.String)
		if err != nil {
			return model.Reconciliation{}, err
		}
		rec.ReconciledAt = &t
	}

	rec.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Reconciliation{}, err
	}

	return rec, nil
}

const reconciliationColumns = `id, transaction_id, journal_entry_id, status, notes, reconciled_by, reconciled_at, created_at`

// Upsert inserts a reconciliation row, or updates the existing one for the
// same transaction since the transaction relation is 1:1.
func (r *ReconciliationRepository) Upsert(ctx context.Context, rec *model.Reconciliation) error {
	query := `
		INSERT INTO reconciliation (id, transaction_id, journal_entry_id, status, notes, reconciled_by, reconciled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			journal_entry_id = excluded.journal_entry_id,
			status = excluded.status,
			notes = excluded.notes,
			reconciled_by = excluded.reconciled_by,
			reconciled_at = excluded.reconciled_at
	`

	var notes, reconciledBy, reconciledAt any
	if rec.Notes != "" {
		notes = rec.Notes
	}
	if rec.ReconciledBy != "" {
		reconciledBy = rec.ReconciledBy
	}
	if rec.ReconciledAt != nil {
		reconciledAt = rec.ReconciledAt.UTC().Format(time.RFC3339)
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		rec.ID, rec.TransactionID, rec.JournalEntryID, rec.Status, notes, reconciledBy, reconciledAt)
	if err != nil {
		return fmt.Errorf("failed to upsert reconciliation: %w", err)
	}
	return nil
}

// Get retrieves a reconciliation by ID.
// Returns apperrors.ErrReconciliationNotFound if no row exists.
func (r *ReconciliationRepository) Get(reconciliationID string) (model.Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation WHERE id = ?`

	rec, err := scanReconciliation(r.getQuerier().QueryRow(query, reconciliationID).Scan)
	if err == sql.ErrNoRows {
		return model.Reconciliation{}, apperrors.ErrReconciliationNotFound
	}
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("failed to scan reconciliation table results: %w", err)
	}
	return rec, nil
}

// GetByTransaction retrieves the reconciliation for a transaction.
// Returns apperrors.ErrReconciliationNotFound if no row exists.
func (r *ReconciliationRepository) GetByTransaction(transactionID string) (model.Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation WHERE transaction_id = ?`

	rec, err := scanReconciliation(r.getQuerier().QueryRow(query, transactionID).Scan)
	if err == sql.ErrNoRows {
		return model.Reconciliation{}, apperrors.ErrReconciliationNotFound
	}
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("failed to scan reconciliation table results: %w", err)
	}
	return rec, nil
}

// UpdateStatusNotes sets a reconciliation's status, notes and audit fields.
// Returns apperrors.ErrReconciliationNotFound if no row was updated.
func (r *ReconciliationRepository) UpdateStatusNotes(ctx context.Context, reconciliationID, status, notes, reconciledBy string, reconciledAt *time.Time) error {
	var reconciledAtVal any
	if reconciledAt != nil {
		reconciledAtVal = reconciledAt.UTC().Format(time.RFC3339)
	}

	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE reconciliation SET status = ?, notes = ?, reconciled_by = ?, reconciled_at = ? WHERE id = ?`,
		status, notes, reconciledBy, reconciledAtVal, reconciliationID)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrReconciliationNotFound
	}
	return nil
}

// CountByStatus counts a portfolio's reconciliations per status within the
// optional transaction-date range.
func (r *ReconciliationRepository) CountByStatus(portfolioID string, start, end *time.Time) (map[string]int, error) {
	query := `
		SELECT rc.status, COUNT(*)
		FROM reconciliation rc
		JOIN "transaction" t ON rc.transaction_id = t.id
		WHERE t.portfolio_id = ?
	`
	args := []any{portfolioID}

	if start != nil {
		query += ` AND t.date >= ?`
		args = append(args, FormatDate(*start))
	}
	if end != nil {
		query += ` AND t.date <= ?`
		args = append(args, FormatDate(*end))
	}
	query += ` GROUP BY rc.status`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation table: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation table results: %w", err)
		}
		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation table: %w", err)
	}

	return counts, nil
}

// CountReconciledEntries counts the distinct journal entries of a portfolio
// referenced by a RECONCILED reconciliation within the optional date range.
func (r *ReconciliationRepository) CountReconciledEntries(portfolioID string, start, end *time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT rc.journal_entry_id)
		FROM reconciliation rc
		JOIN journal_entry e ON rc.journal_entry_id = e.id
		WHERE e.portfolio_id = ? AND rc.status = ?
	`
	args := []any{portfolioID, model.ReconciliationStatusReconciled}

	if start != nil {
		query += ` AND e.entry_date >= ?`
		args = append(args, FormatDate(*start))
	}
	if end != nil {
		query += ` AND e.entry_date <= ?`
		args = append(args, FormatDate(*end))
	}

	var count int
	if err := r.getQuerier().QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query reconciliation table: %w", err)
	}
	return count, nil
}
