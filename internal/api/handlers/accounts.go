package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/api/response"
	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/validation"
)

// AccountHandler handles chart-of-accounts HTTP requests
type AccountHandler struct {
	chartService *service.ChartService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(chartService *service.ChartService) *AccountHandler {
	return &AccountHandler{
		chartService: chartService,
	}
}

// CreateAccount handles POST requests to add an account to a portfolio's chart.
//
// Endpoint: POST /api/account
// Request Body: CreateAccountRequest (portfolioId, code, name, type, ...)
// Response: 201 Created with Account
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the code or name is already taken
// Error: 422 Unprocessable Entity if the parent chain would form a cycle
// Error: 500 Internal Server Error if creation fails
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.chartService.CreateAccount(r.Context(), service.CreateAccountInput{
		PortfolioID: req.PortfolioID,
		ParentID:    req.ParentID,
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.Type,
		Category:    req.Category,
		Currency:    req.Currency,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateAccount):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateAccount.Error(), err.Error())
		case errors.Is(err, apperrors.ErrParentCycle):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrParentCycle.Error(), err.Error())
		case errors.Is(err, apperrors.ErrForeignAccount):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrForeignAccount.Error(), err.Error())
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create account", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// Chart handles GET requests to list a portfolio's chart of accounts with
// their hierarchical full codes.
//
// Endpoint: GET /api/account/portfolio/{uuid}
// Response: 200 OK with array of AccountResponse
// Error: 400 Bad Request if portfolio ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Chart(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	accounts, err := h.chartService.GetChart(portfolioID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// DeactivateAccount handles POST requests to soft-deactivate an account.
//
// Endpoint: POST /api/account/{uuid}/deactivate
// Response: 204 No Content on success
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 404 Not Found if account not found
// Error: 422 Unprocessable Entity if the account is a system account
// Error: 500 Internal Server Error if deactivation fails
func (h *AccountHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	err := h.chartService.DeactivateAccount(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrSystemAccount):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrSystemAccount.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to deactivate account", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
