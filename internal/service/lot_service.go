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

// amountPlaces is the fixed-point precision carried by every quantity and
// monetary amount.
const amountPlaces = 8

func round8(d decimal.Decimal) decimal.Decimal {
	return d.Round(amountPlaces)
}

// LotService handles FIFO cost-basis lot accounting: one lot per BUY,
// greedy oldest-first allocation on SELL, and realized gain/loss.
type LotService struct {
	db      *sql.DB
	lotRepo *repository.LotRepository
}

// NewLotService creates a new LotService with the provided repository dependencies.
func NewLotService(db *sql.DB, lotRepo *repository.LotRepository) *LotService {
	return &LotService{
		db:      db,
		lotRepo: lotRepo,
	}
}

// OpenLot creates the cost-basis lot for a BUY transaction in its own
// database transaction.
func (s *LotService) OpenLot(ctx context.Context, buy model.Transaction) (*model.SecurityLot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	lot, err := s.OpenLotTx(ctx, tx, buy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return lot, nil
}

// OpenLotTx is OpenLot running inside the caller's transaction.
// Returns apperrors.ErrDuplicateLot if a lot already exists for the
// transaction; lots and BUY transactions are strictly 1:1.
func (s *LotService) OpenLotTx(ctx context.Context, tx *sql.Tx, buy model.Transaction) (*model.SecurityLot, error) {
	lotRepo := s.lotRepo.WithTx(tx)

	exists, err := lotRepo.LotExistsForTransaction(buy.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicateLot, buy.ID)
	}

	costPerShareBase := round8(buy.Price.Mul(buy.ExchangeRate))

	lot := &model.SecurityLot{
		ID:                uuid.New().String(),
		PortfolioID:       buy.PortfolioID,
		TransactionID:     buy.ID,
		Ticker:            buy.Ticker,
		PurchaseDate:      buy.Date,
		Quantity:          buy.Quantity,
		RemainingQuantity: buy.Quantity,
		CostPerShare:      buy.Price,
		TotalCost:         round8(buy.Quantity.Mul(buy.Price)),
		CostPerShareBase:  costPerShareBase,
		TotalCostBase:     round8(buy.Quantity.Mul(costPerShareBase)),
		ExchangeRate:      buy.ExchangeRate,
		CreatedAt:         time.Now().UTC(),
	}

	if err := lotRepo.InsertLot(ctx, lot); err != nil {
		return nil, err
	}

	return lot, nil
}

// AllocateSale consumes open lots FIFO for a SELL transaction in its own
// database transaction.
func (s *LotService) AllocateSale(ctx context.Context, sell model.Transaction, proceedsBase decimal.Decimal) ([]model.SecurityAllocation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	allocations, err := s.AllocateSaleTx(ctx, tx, sell, proceedsBase)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return allocations, nil
}

// AllocateSaleTx allocates a sale across the ticker's open lots in FIFO
// order inside the caller's transaction: purchase date ascending, creation
// order breaking same-date ties. Each consumed lot yields one allocation
// whose proceeds are the proportional-by-quantity share of the sale
// proceeds; the final allocation absorbs the rounding remainder so the
// allocations always sum exactly to proceedsBase.
//
// Returns apperrors.ErrInsufficientLots, without mutating any lot, when the
// open quantity cannot cover the sale.
func (s *LotService) AllocateSaleTx(ctx context.Context, tx *sql.Tx, sell model.Transaction, proceedsBase decimal.Decimal) ([]model.SecurityAllocation, error) {
	lotRepo := s.lotRepo.WithTx(tx)

	lots, err := lotRepo.GetOpenLotsByTicker(sell.PortfolioID, sell.Ticker)
	if err != nil {
		return nil, err
	}

	quantityToSell := sell.Quantity

	totalOpen := decimal.Zero
	for _, lot := range lots {
		totalOpen = totalOpen.Add(lot.RemainingQuantity)
	}
	if totalOpen.LessThan(quantityToSell) {
		return nil, fmt.Errorf("%w: %s held, %s requested for %s",
			apperrors.ErrInsufficientLots, totalOpen, quantityToSell, sell.Ticker)
	}

	allocations := []model.SecurityAllocation{}
	remainingToSell := quantityToSell
	proceedsAssigned := decimal.Zero

	for i := range lots {
		if remainingToSell.IsZero() {
			break
		}
		lot := &lots[i]

		take := decimal.Min(lot.RemainingQuantity, remainingToSell)
		remainingToSell = remainingToSell.Sub(take)

		// Proportional-by-quantity proceeds split; the last allocation takes
		// the remainder so rounding never leaks value.
		var proceeds decimal.Decimal
		if remainingToSell.IsZero() {
			proceeds = proceedsBase.Sub(proceedsAssigned)
		} else {
			proceeds = round8(proceedsBase.Mul(take).Div(quantityToSell))
		}
		proceedsAssigned = proceedsAssigned.Add(proceeds)

		costBasis := round8(take.Mul(lot.CostPerShareBase))

		allocation := model.SecurityAllocation{
			ID:                uuid.New().String(),
			LotID:             lot.ID,
			TransactionID:     sell.ID,
			QuantityAllocated: take,
			CostBasis:         costBasis,
			Proceeds:          proceeds,
			RealizedGainLoss:  proceeds.Sub(costBasis),
			CreatedAt:         time.Now().UTC(),
		}

		if err := lotRepo.InsertAllocation(ctx, &allocation); err != nil {
			return nil, err
		}

		lot.RemainingQuantity = lot.RemainingQuantity.Sub(take)
		lot.IsClosed = lot.RemainingQuantity.IsZero()
		if err := lotRepo.UpdateLotRemaining(ctx, lot.ID, lot.RemainingQuantity.String(), lot.IsClosed); err != nil {
			return nil, err
		}

		allocations = append(allocations, allocation)
	}

	return allocations, nil
}

// GetLots retrieves every lot for a ticker, open and closed, in FIFO order.
func (s *LotService) GetLots(portfolioID, ticker string) ([]model.SecurityLot, error) {
	return s.lotRepo.GetLotsByTicker(portfolioID, ticker)
}

// GetAllocationsByTransaction retrieves the allocations created by a SELL transaction.
func (s *LotService) GetAllocationsByTransaction(transactionID string) ([]model.SecurityAllocation, error) {
	return s.lotRepo.GetAllocationsByTransaction(transactionID)
}

// GetAllocationsByLot retrieves the allocations that consumed a lot.
func (s *LotService) GetAllocationsByLot(lotID string) ([]model.SecurityAllocation, error) {
	return s.lotRepo.GetAllocationsByLot(lotID)
}
