package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the given transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{db: r.db, tx: tx}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert persists a new portfolio.
func (r *PortfolioRepository) Insert(ctx context.Context, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, name, description, base_currency, is_archived)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query, p.ID, p.Name, p.Description, p.BaseCurrency, p.IsArchived)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// Get retrieves a single portfolio by ID.
// Returns apperrors.ErrPortfolioNotFound if no row exists.
func (r *PortfolioRepository) Get(portfolioID string) (model.Portfolio, error) {
	query := `
		SELECT id, name, description, base_currency, is_archived, created_at
		FROM portfolio
		WHERE id = ?
	`

	var p model.Portfolio
	var createdAtStr string
	err := r.getQuerier().QueryRow(query, portfolioID).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.BaseCurrency,
		&p.IsArchived,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// GetAll retrieves all portfolios, including archived ones.
func (r *PortfolioRepository) GetAll() ([]model.Portfolio, error) {
	query := `
		SELECT id, name, description, base_currency, is_archived, created_at
		FROM portfolio
		ORDER BY name ASC
	`

	rows, err := r.getQuerier().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}

	for rows.Next() {
		var p model.Portfolio
		var createdAtStr string

		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.BaseCurrency, &p.IsArchived, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}

		p.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetIDs returns the IDs of all non-archived portfolios.
func (r *PortfolioRepository) GetIDs() ([]string, error) {
	rows, err := r.getQuerier().Query(`SELECT id FROM portfolio WHERE is_archived = FALSE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return ids, nil
}
