package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rvermeulen/portfolio-ledger/internal/api/response"
	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/validation"
)

// ReportHandler handles financial-report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// TrialBalance handles GET requests to compute a portfolio's trial balance.
//
// Endpoint: GET /api/reports/trial-balance/{portfolioId}?as_of=YYYY-MM-DD
// Response: 200 OK with TrialBalance
// Error: 400 Bad Request if portfolio ID or as_of is invalid
// Error: 500 Internal Server Error if the ledger is out of balance or the
// computation fails
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	asOf, err := parseOptionalDate(r, "as_of")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}
	if asOf == nil {
		now := time.Now().UTC()
		asOf = &now
	}

	report, err := h.reportService.TrialBalance(portfolioID, *asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrTrialBalanceOutOfBalance) {
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrTrialBalanceOutOfBalance.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// IncomeStatement handles GET requests to compute net income for a period.
//
// Endpoint: GET /api/reports/income-statement/{portfolioId}?start=&end=
// Response: 200 OK with IncomeStatement
// Error: 400 Bad Request if portfolio ID or the period is invalid
// Error: 500 Internal Server Error if the computation fails
func (h *ReportHandler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	start, err := parseOptionalDate(r, "start")
	if err != nil || start == nil {
		response.RespondError(w, http.StatusBadRequest, "start date is required in YYYY-MM-DD format", "")
		return
	}
	end, err := parseOptionalDate(r, "end")
	if err != nil || end == nil {
		response.RespondError(w, http.StatusBadRequest, "end date is required in YYYY-MM-DD format", "")
		return
	}

	report, err := h.reportService.IncomeStatement(portfolioID, *start, *end)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// BalanceSheet handles GET requests to compute a portfolio's balance sheet.
//
// Endpoint: GET /api/reports/balance-sheet/{portfolioId}?as_of=YYYY-MM-DD
// Response: 200 OK with BalanceSheet
// Error: 400 Bad Request if portfolio ID or as_of is invalid
// Error: 500 Internal Server Error if the accounting equation does not hold
// or the computation fails
func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	asOf, err := parseOptionalDate(r, "as_of")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}
	if asOf == nil {
		now := time.Now().UTC()
		asOf = &now
	}

	report, err := h.reportService.BalanceSheet(portfolioID, *asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountingEquation) {
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrAccountingEquation.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}
