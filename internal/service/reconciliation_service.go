package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/repository"
)

// SystemActor identifies reconciliations performed automatically rather than
// by a user.
const SystemActor = "system"

// ReconciliationService maintains the 1:1 links between transactions and the
// journal entries recording their effects, including discrepancy handling and
// the derived summary counts.
type ReconciliationService struct {
	db                 *sql.DB
	reconciliationRepo *repository.ReconciliationRepository
	transactionRepo    *repository.TransactionRepository
	journalRepo        *repository.JournalRepository
}

// NewReconciliationService creates a new ReconciliationService with the provided repository dependencies.
func NewReconciliationService(
	db *sql.DB,
	reconciliationRepo *repository.ReconciliationRepository,
	transactionRepo *repository.TransactionRepository,
	journalRepo *repository.JournalRepository,
) *ReconciliationService {
	return &ReconciliationService{
		db:                 db,
		reconciliationRepo: reconciliationRepo,
		transactionRepo:    transactionRepo,
		journalRepo:        journalRepo,
	}
}

// Reconcile links a transaction to a journal entry with RECONCILED status,
// replacing any prior link for the transaction.
func (s *ReconciliationService) Reconcile(ctx context.Context, transactionID, journalEntryID, reconciledBy, notes string) (*model.Reconciliation, error) {
	if _, err := s.transactionRepo.Get(transactionID); err != nil {
		return nil, err
	}
	if _, err := s.journalRepo.GetEntry(journalEntryID); err != nil {
		return nil, err
	}

	return s.reconcileTx(ctx, nil, transactionID, journalEntryID, reconciledBy, notes)
}

// ReconcileTx is Reconcile running inside the caller's transaction, without
// the existence pre-checks since the caller just created both rows.
func (s *ReconciliationService) ReconcileTx(ctx context.Context, tx *sql.Tx, transactionID, journalEntryID, reconciledBy, notes string) (*model.Reconciliation, error) {
	return s.reconcileTx(ctx, tx, transactionID, journalEntryID, reconciledBy, notes)
}

func (s *ReconciliationService) reconcileTx(ctx context.Context, tx *sql.Tx, transactionID, journalEntryID, reconciledBy, notes string) (*model.Reconciliation, error) {
	repo := s.reconciliationRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	now := time.Now().UTC()
	rec := &model.Reconciliation{
		ID:             uuid.New().String(),
		TransactionID:  transactionID,
		JournalEntryID: journalEntryID,
		Status:         model.ReconciliationStatusReconciled,
		Notes:          notes,
		ReconciledBy:   reconciledBy,
		ReconciledAt:   &now,
	}

	if err := repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	// The upsert may have updated an existing row; read back the canonical one.
	stored, err := repo.GetByTransaction(transactionID)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByTransaction retrieves the reconciliation linked to a transaction.
func (s *ReconciliationService) GetByTransaction(transactionID string) (model.Reconciliation, error) {
	return s.reconciliationRepo.GetByTransaction(transactionID)
}

// AutoReconcile matches each unreconciled transaction in a portfolio against
// POSTED journal entries whose reference carries the transaction's ID. A
// transaction is reconciled only when exactly one entry matches; zero or
// multiple matches leave it untouched for manual review. Returns the number
// of transactions reconciled.
func (s *ReconciliationService) AutoReconcile(ctx context.Context, portfolioID string) (int, error) {
	unreconciled, err := s.transactionRepo.GetUnreconciledByPortfolio(portfolioID)
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for _, t := range unreconciled {
		entryIDs, err := s.journalRepo.FindPostedIDsByReference(portfolioID, t.ID)
		if err != nil {
			return reconciled, err
		}
		if len(entryIDs) != 1 {
			if len(entryIDs) > 1 {
				log.Printf("auto-reconcile: transaction %s matches %d posted entries, skipping", t.ID, len(entryIDs))
			}
			continue
		}

		if _, err := s.reconcileTx(ctx, nil, t.ID, entryIDs[0], SystemActor, ""); err != nil {
			return reconciled, err
		}
		reconciled++
	}

	return reconciled, nil
}

// MarkDiscrepancy flags a reconciliation as DISCREPANCY with an explanatory
// note. Only RECONCILED and PENDING rows can be flagged, and the note is
// mandatory.
func (s *ReconciliationService) MarkDiscrepancy(ctx context.Context, reconciliationID, note, flaggedBy string) (model.Reconciliation, error) {
	if note == "" {
		return model.Reconciliation{}, fmt.Errorf("%w: discrepancy note", apperrors.ErrNoteRequired)
	}

	rec, err := s.reconciliationRepo.Get(reconciliationID)
	if err != nil {
		return model.Reconciliation{}, err
	}

	if rec.Status != model.ReconciliationStatusReconciled && rec.Status != model.ReconciliationStatusPending {
		return model.Reconciliation{}, fmt.Errorf("%w: cannot flag %s reconciliation %s as discrepancy",
			apperrors.ErrInvalidState, rec.Status, reconciliationID)
	}

	now := time.Now().UTC()
	if err := s.reconciliationRepo.UpdateStatusNotes(ctx, reconciliationID,
		model.ReconciliationStatusDiscrepancy, note, flaggedBy, &now); err != nil {
		return model.Reconciliation{}, err
	}

	return s.reconciliationRepo.Get(reconciliationID)
}

// ResolveDiscrepancy returns a DISCREPANCY reconciliation to RECONCILED. The
// resolution note is prepended while the original discrepancy note stays in
// the row, so the audit trail survives.
func (s *ReconciliationService) ResolveDiscrepancy(ctx context.Context, reconciliationID, resolution, resolvedBy string) (model.Reconciliation, error) {
	if resolution == "" {
		return model.Reconciliation{}, fmt.Errorf("%w: resolution note", apperrors.ErrNoteRequired)
	}

	rec, err := s.reconciliationRepo.Get(reconciliationID)
	if err != nil {
		return model.Reconciliation{}, err
	}

	if rec.Status != model.ReconciliationStatusDiscrepancy {
		return model.Reconciliation{}, fmt.Errorf("%w: cannot resolve %s reconciliation %s",
			apperrors.ErrInvalidState, rec.Status, reconciliationID)
	}

	notes := fmt.Sprintf("RESOLVED: %s | %s", resolution, rec.Notes)

	now := time.Now().UTC()
	if err := s.reconciliationRepo.UpdateStatusNotes(ctx, reconciliationID,
		model.ReconciliationStatusReconciled, notes, resolvedBy, &now); err != nil {
		return model.Reconciliation{}, err
	}

	return s.reconciliationRepo.Get(reconciliationID)
}

// Summary derives a portfolio's reconciliation counts within the optional
// date range. Every count is computed from the underlying tables on each
// call.
func (s *ReconciliationService) Summary(portfolioID string, start, end *time.Time) (model.ReconciliationSummary, error) {
	totalTransactions, err := s.transactionRepo.Count(portfolioID, start, end)
	if err != nil {
		return model.ReconciliationSummary{}, err
	}

	byStatus, err := s.reconciliationRepo.CountByStatus(portfolioID, start, end)
	if err != nil {
		return model.ReconciliationSummary{}, err
	}

	totalEntries, err := s.journalRepo.CountEntries(portfolioID, start, end)
	if err != nil {
		return model.ReconciliationSummary{}, err
	}

	reconciledEntries, err := s.reconciliationRepo.CountReconciledEntries(portfolioID, start, end)
	if err != nil {
		return model.ReconciliationSummary{}, err
	}

	reconciledTransactions := byStatus[model.ReconciliationStatusReconciled]

	return model.ReconciliationSummary{
		TotalTransactions:          totalTransactions,
		ReconciledTransactions:     reconciledTransactions,
		UnreconciledTransactions:   totalTransactions - reconciledTransactions,
		TotalJournalEntries:        totalEntries,
		ReconciledJournalEntries:   reconciledEntries,
		UnreconciledJournalEntries: totalEntries - reconciledEntries,
		Discrepancies:              byStatus[model.ReconciliationStatusDiscrepancy],
	}, nil
}
