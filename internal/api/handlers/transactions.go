package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/api/response"
	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the postingService.
type TransactionHandler struct {
	postingService *service.PostingService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(postingService *service.PostingService) *TransactionHandler {
	return &TransactionHandler{
		postingService: postingService,
	}
}

// CreateTransaction handles POST requests to record a brokerage transaction
// and all of its ledger effects atomically.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest (portfolioId, date, type, quantity, price, ...)
// Response: 201 Created with TransactionEffects
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if a lot already exists for the transaction
// Error: 422 Unprocessable Entity if open lots cannot cover a sale
// Error: 500 Internal Server Error if recording fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	in, err := toRecordTransactionInput(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	effects, err := h.postingService.RecordTransactionEffects(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDuplicateLot):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateLot.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInsufficientLots):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientLots.Error(), err.Error())
		case errors.Is(err, apperrors.ErrNegativeAmount), errors.Is(err, apperrors.ErrInvalidState):
			response.RespondError(w, http.StatusBadRequest, "transaction rejected", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to record transaction", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, effects)
}

// toRecordTransactionInput converts the wire representation into service
// input, parsing the decimal strings. A missing exchange rate means the
// transaction already settled in the base currency.
func toRecordTransactionInput(req request.CreateTransactionRequest) (service.RecordTransactionInput, error) {
	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return service.RecordTransactionInput{}, err
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return service.RecordTransactionInput{}, err
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return service.RecordTransactionInput{}, err
	}

	rate := decimal.NewFromInt(1)
	if req.ExchangeRate != "" {
		if rate, err = decimal.NewFromString(req.ExchangeRate); err != nil {
			return service.RecordTransactionInput{}, err
		}
	}

	return service.RecordTransactionInput{
		PortfolioID:  req.PortfolioID,
		Ticker:       req.Ticker,
		Date:         date,
		Type:         req.Type,
		Quantity:     quantity,
		Price:        price,
		Currency:     req.Currency,
		ExchangeRate: rate,
	}, nil
}

// TransactionPerPortfolio handles GET requests to retrieve all transactions
// for a specific portfolio.
//
// Endpoint: GET /api/transaction/portfolio/{uuid}
// Response: 200 OK with array of Transaction
// Error: 400 Bad Request if portfolio ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) TransactionPerPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	transactions, err := h.postingService.GetTransactions(portfolioID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.postingService.GetTransaction(transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}
