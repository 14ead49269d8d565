package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// LotRepository provides data access methods for the security_lot and
// security_allocation tables.
type LotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewLotRepository creates a new LotRepository with the provided database connection.
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the given transaction.
func (r *LotRepository) WithTx(tx *sql.Tx) *LotRepository {
	return &LotRepository{db: r.db, tx: tx}
}

func (r *LotRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const lotColumns = `id, portfolio_id, transaction_id, ticker, purchase_date, quantity, remaining_quantity,
		cost_per_share, total_cost, cost_per_share_base, total_cost_base, exchange_rate, is_closed, created_at`

func scanLot(scan func(dest ...any) error) (model.SecurityLot, error) {
	var lot model.SecurityLot
	var dateStr, createdAtStr string
	var quantity, remaining, costPerShare, totalCost, costPerShareBase, totalCostBase, rate string

	err := scan(
		&lot.ID,
		&lot.PortfolioID,
		&lot.TransactionID,
		&lot.Ticker,
		&dateStr,
		&quantity,
		&remaining,
		&costPerShare,
		&totalCost,
		&costPerShareBase,
		&totalCostBase,
		&rate,
		&lot.IsClosed,
		&createdAtStr,
	)
	if err != nil {
		return model.SecurityLot{}, err
	}

	if lot.PurchaseDate, err = ParseTime(dateStr); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.SecurityLot{}, err
	}

	if lot.Quantity, err = ParseDecimal(quantity); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.RemainingQuantity, err = ParseDecimal(remaining); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.CostPerShare, err = ParseDecimal(costPerShare); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.TotalCost, err = ParseDecimal(totalCost); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.CostPerShareBase, err = ParseDecimal(costPerShareBase); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.TotalCostBase, err = ParseDecimal(totalCostBase); err != nil {
		return model.SecurityLot{}, err
	}
	if lot.ExchangeRate, err = ParseDecimal(rate); err != nil {
		return model.SecurityLot{}, err
	}

	return lot, nil
}

// InsertLot persists a new security lot.
func (r *LotRepository) InsertLot(ctx context.Context, lot *model.SecurityLot) error {
	query := `
		INSERT INTO security_lot (id, portfolio_id, transaction_id, ticker, purchase_date, quantity, remaining_quantity,
			cost_per_share, total_cost, cost_per_share_base, total_cost_base, exchange_rate, is_closed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		lot.ID, lot.PortfolioID, lot.TransactionID, lot.Ticker, FormatDate(lot.PurchaseDate),
		lot.Quantity.String(), lot.RemainingQuantity.String(),
		lot.CostPerShare.String(), lot.TotalCost.String(),
		lot.CostPerShareBase.String(), lot.TotalCostBase.String(),
		lot.ExchangeRate.String(), lot.IsClosed)
	if err != nil {
		return fmt.Errorf("failed to insert security lot: %w", err)
	}
	return nil
}

// GetLot retrieves a single lot by ID.
// Returns apperrors.ErrLotNotFound if no row exists.
func (r *LotRepository) GetLot(lotID string) (model.SecurityLot, error) {
	query := `SELECT ` + lotColumns + ` FROM security_lot WHERE id = ?`

	lot, err := scanLot(r.getQuerier().QueryRow(query, lotID).Scan)
	if err == sql.ErrNoRows {
		return model.SecurityLot{}, apperrors.ErrLotNotFound
	}
	if err != nil {
		return model.SecurityLot{}, fmt.Errorf("failed to scan security_lot table results: %w", err)
	}
	return lot, nil
}

// LotExistsForTransaction reports whether a lot already exists for the given
// BUY transaction.
func (r *LotRepository) LotExistsForTransaction(transactionID string) (bool, error) {
	var count int
	err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM security_lot WHERE transaction_id = ?`, transactionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query security_lot table: %w", err)
	}
	return count > 0, nil
}

// GetOpenLotsByTicker retrieves the open lots for a ticker in FIFO order:
// purchase date ascending, creation order breaking same-date ties.
func (r *LotRepository) GetOpenLotsByTicker(portfolioID, ticker string) ([]model.SecurityLot, error) {
	query := `SELECT ` + lotColumns + `
		FROM security_lot
		WHERE portfolio_id = ? AND ticker = ? AND is_closed = FALSE
		ORDER BY purchase_date ASC, created_at ASC, rowid ASC`

	return r.queryLots(query, portfolioID, ticker)
}

// GetLotsByTicker retrieves all lots for a ticker, open and closed, in FIFO order.
func (r *LotRepository) GetLotsByTicker(portfolioID, ticker string) ([]model.SecurityLot, error) {
	query := `SELECT ` + lotColumns + `
		FROM security_lot
		WHERE portfolio_id = ? AND ticker = ?
		ORDER BY purchase_date ASC, created_at ASC, rowid ASC`

	return r.queryLots(query, portfolioID, ticker)
}

func (r *LotRepository) queryLots(query string, args ...any) ([]model.SecurityLot, error) {
	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.SecurityLot{}
	for rows.Next() {
		lot, err := scanLot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security_lot table results: %w", err)
		}
		lots = append(lots, lot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_lot table: %w", err)
	}

	return lots, nil
}

// UpdateLotRemaining sets a lot's remaining quantity and closed flag.
func (r *LotRepository) UpdateLotRemaining(ctx context.Context, lotID string, remaining string, isClosed bool) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE security_lot SET remaining_quantity = ?, is_closed = ? WHERE id = ?`,
		remaining, isClosed, lotID)
	if err != nil {
		return fmt.Errorf("failed to update security lot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrLotNotFound
	}
	return nil
}

// InsertAllocation persists a new security allocation.
func (r *LotRepository) InsertAllocation(ctx context.Context, a *model.SecurityAllocation) error {
	query := `
		INSERT INTO security_allocation (id, lot_id, transaction_id, quantity_allocated, cost_basis, proceeds, realized_gain_loss)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID, a.LotID, a.TransactionID,
		a.QuantityAllocated.String(), a.CostBasis.String(), a.Proceeds.String(), a.RealizedGainLoss.String())
	if err != nil {
		return fmt.Errorf("failed to insert security allocation: %w", err)
	}
	return nil
}

// GetAllocationsByTransaction retrieves the allocations created by a SELL
// transaction in creation order.
func (r *LotRepository) GetAllocationsByTransaction(transactionID string) ([]model.SecurityAllocation, error) {
	return r.queryAllocations(`WHERE transaction_id = ?`, transactionID)
}

// GetAllocationsByLot retrieves the allocations consuming a lot in creation order.
func (r *LotRepository) GetAllocationsByLot(lotID string) ([]model.SecurityAllocation, error) {
	return r.queryAllocations(`WHERE lot_id = ?`, lotID)
}

func (r *LotRepository) queryAllocations(where string, arg any) ([]model.SecurityAllocation, error) {
	query := `
		SELECT id, lot_id, transaction_id, quantity_allocated, cost_basis, proceeds, realized_gain_loss, created_at
		FROM security_allocation
		` + where + `
		ORDER BY rowid ASC
	`

	rows, err := r.getQuerier().Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_allocation table: %w", err)
	}
	defer rows.Close()

	allocations := []model.SecurityAllocation{}
	for rows.Next() {
		var a model.SecurityAllocation
		var quantity, costBasis, proceeds, gainLoss, createdAtStr string

		err := rows.Scan(&a.ID, &a.LotID, &a.TransactionID, &quantity, &costBasis, &proceeds, &gainLoss, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security_allocation table results: %w", err)
		}

		if a.QuantityAllocated, err = ParseDecimal(quantity); err != nil {
			return nil, err
		}
		if a.CostBasis, err = ParseDecimal(costBasis); err != nil {
			return nil, err
		}
		if a.Proceeds, err = ParseDecimal(proceeds); err != nil {
			return nil, err
		}
		if a.RealizedGainLoss, err = ParseDecimal(gainLoss); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}

		allocations = append(allocations, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_allocation table: %w", err)
	}

	return allocations, nil
}
