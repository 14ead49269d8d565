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

// ReconciliationHandler handles reconciliation HTTP requests
type ReconciliationHandler struct {
	reconciliationService *service.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService *service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// Reconcile handles POST requests to manually link a transaction to a
// journal entry.
//
// Endpoint: POST /api/reconciliation
// Request Body: ReconcileRequest (transactionId, journalEntryId)
// Response: 200 OK with Reconciliation
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the transaction or entry does not exist
// Error: 500 Internal Server Error if reconciling fails
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ReconcileRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateReconcile(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rec, err := h.reconciliationService.Reconcile(r.Context(), req.TransactionID, req.JournalEntryID, req.ReconciledBy, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrJournalEntryNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrJournalEntryNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to reconcile", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, rec)
}

// AutoReconcileResponse reports how many transactions an auto-reconcile sweep
// matched.
type AutoReconcileResponse struct {
	Reconciled int `json:"reconciled"`
}

// AutoReconcile handles POST requests to sweep a portfolio's unreconciled
// transactions against posted journal entries.
//
// Endpoint: POST /api/reconciliation/auto/{portfolioId}
// Response: 200 OK with AutoReconcileResponse
// Error: 400 Bad Request if portfolio ID is invalid
// Error: 500 Internal Server Error if the sweep fails
func (h *ReconciliationHandler) AutoReconcile(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	reconciled, err := h.reconciliationService.AutoReconcile(r.Context(), portfolioID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "auto-reconcile failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, AutoReconcileResponse{Reconciled: reconciled})
}

// MarkDiscrepancy handles POST requests to flag a reconciliation as a
// discrepancy.
//
// Endpoint: POST /api/reconciliation/{uuid}/discrepancy
// Request Body: DiscrepancyRequest (note, flaggedBy)
// Response: 200 OK with updated Reconciliation
// Error: 400 Bad Request if the note is missing
// Error: 404 Not Found if reconciliation not found
// Error: 409 Conflict if the reconciliation cannot be flagged from its status
// Error: 500 Internal Server Error if the update fails
func (h *ReconciliationHandler) MarkDiscrepancy(w http.ResponseWriter, r *http.Request) {
	reconciliationID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.DiscrepancyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDiscrepancy(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rec, err := h.reconciliationService.MarkDiscrepancy(r.Context(), reconciliationID, req.Note, req.FlaggedBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrReconciliationNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrReconciliationNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidState):
			response.RespondError(w, http.StatusConflict, apperrors.ErrInvalidState.Error(), err.Error())
		case errors.Is(err, apperrors.ErrNoteRequired):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrNoteRequired.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to flag discrepancy", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, rec)
}

// ResolveDiscrepancy handles POST requests to resolve a flagged discrepancy.
//
// Endpoint: POST /api/reconciliation/{uuid}/resolve
// Request Body: ResolveDiscrepancyRequest (resolution, resolvedBy)
// Response: 200 OK with updated Reconciliation
// Error: 400 Bad Request if the resolution note is missing
// Error: 404 Not Found if reconciliation not found
// Error: 409 Conflict if the reconciliation is not in DISCREPANCY status
// Error: 500 Internal Server Error if the update fails
func (h *ReconciliationHandler) ResolveDiscrepancy(w http.ResponseWriter, r *http.Request) {
	reconciliationID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.ResolveDiscrepancyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateResolveDiscrepancy(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rec, err := h.reconciliationService.ResolveDiscrepancy(r.Context(), reconciliationID, req.Resolution, req.ResolvedBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrReconciliationNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrReconciliationNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidState):
			response.RespondError(w, http.StatusConflict, apperrors.ErrInvalidState.Error(), err.Error())
		case errors.Is(err, apperrors.ErrNoteRequired):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrNoteRequired.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to resolve discrepancy", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, rec)
}

// Summary handles GET requests to derive a portfolio's reconciliation counts.
//
// Endpoint: GET /api/reconciliation/summary/{portfolioId}?start=&end=
// Response: 200 OK with ReconciliationSummary
// Error: 400 Bad Request if portfolio ID or dates are invalid
// Error: 500 Internal Server Error if counting fails
func (h *ReconciliationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	start, err := parseOptionalDate(r, "start")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid start date", err.Error())
		return
	}
	end, err := parseOptionalDate(r, "end")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid end date", err.Error())
		return
	}

	summary, err := h.reconciliationService.Summary(portfolioID, start, end)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveReconciliation.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
