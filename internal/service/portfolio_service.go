package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/repository"
)

// PortfolioService handles portfolio business logic.
type PortfolioService struct {
	db            *sql.DB
	portfolioRepo *repository.PortfolioRepository
	chartService  *ChartService
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	chartService *ChartService,
) *PortfolioService {
	return &PortfolioService{
		db:            db,
		portfolioRepo: portfolioRepo,
		chartService:  chartService,
	}
}

// CreatePortfolio creates a portfolio and seeds its system chart of accounts
// in a single database transaction.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, name, description, baseCurrency string) (*model.Portfolio, error) {
	portfolio := &model.Portfolio{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  description,
		BaseCurrency: baseCurrency,
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if err := s.portfolioRepo.WithTx(tx).Insert(ctx, portfolio); err != nil {
		return nil, err
	}

	if err := s.chartService.SeedDefaultChart(ctx, tx, portfolio.ID, baseCurrency); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return portfolio, nil
}

// GetPortfolio retrieves a single portfolio by ID.
func (s *PortfolioService) GetPortfolio(portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.Get(portfolioID)
}

// GetAllPortfolios retrieves all portfolios, including archived ones.
func (s *PortfolioService) GetAllPortfolios() ([]model.Portfolio, error) {
	return s.portfolioRepo.GetAll()
}
