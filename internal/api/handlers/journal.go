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

// JournalHandler handles journal-entry and general-ledger HTTP requests
type JournalHandler struct {
	journalService *service.JournalService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

// CreateEntry handles POST requests to create a draft journal entry.
//
// Endpoint: POST /api/journal
// Request Body: CreateJournalEntryRequest (portfolioId, date, type, lines)
// Response: 201 Created with JournalEntry in DRAFT status
// Error: 400 Bad Request if validation fails
// Error: 422 Unprocessable Entity if the lines break a ledger invariant
// Error: 500 Internal Server Error if creation fails
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateJournalEntryRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateJournalEntry(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	in, err := toCreateEntryInput(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, err := h.journalService.CreateEntry(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnbalancedEntry),
			errors.Is(err, apperrors.ErrBothSidesSet),
			errors.Is(err, apperrors.ErrNegativeAmount),
			errors.Is(err, apperrors.ErrForeignAccount),
			errors.Is(err, apperrors.ErrAccountInactive):
			response.RespondError(w, http.StatusUnprocessableEntity, "journal entry rejected", err.Error())
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create journal entry", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// toCreateEntryInput converts the wire representation into service input,
// parsing the decimal strings.
func toCreateEntryInput(req request.CreateJournalEntryRequest) (service.CreateEntryInput, error) {
	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return service.CreateEntryInput{}, err
	}

	in := service.CreateEntryInput{
		PortfolioID: req.PortfolioID,
		Date:        date,
		Type:        req.Type,
		Description: req.Description,
		Reference:   req.Reference,
	}

	for _, l := range req.Lines {
		line := service.LineInput{
			AccountID:       l.AccountID,
			Debit:           decimal.Zero,
			Credit:          decimal.Zero,
			Currency:        l.Currency,
			ForeignCurrency: l.ForeignCurrency,
		}

		if l.Debit != "" {
			if line.Debit, err = decimal.NewFromString(l.Debit); err != nil {
				return service.CreateEntryInput{}, err
			}
		}
		if l.Credit != "" {
			if line.Credit, err = decimal.NewFromString(l.Credit); err != nil {
				return service.CreateEntryInput{}, err
			}
		}
		if l.ForeignAmount != "" {
			amount, err := decimal.NewFromString(l.ForeignAmount)
			if err != nil {
				return service.CreateEntryInput{}, err
			}
			line.ForeignAmount = decimal.NewNullDecimal(amount)
		}
		if l.ExchangeRate != "" {
			rate, err := decimal.NewFromString(l.ExchangeRate)
			if err != nil {
				return service.CreateEntryInput{}, err
			}
			line.ExchangeRate = decimal.NewNullDecimal(rate)
		}

		in.Lines = append(in.Lines, line)
	}

	return in, nil
}

// GetEntry handles GET requests to retrieve a journal entry with its lines.
//
// Endpoint: GET /api/journal/{uuid}
// Response: 200 OK with JournalEntry
// Error: 400 Bad Request if entry ID is invalid (validated by middleware)
// Error: 404 Not Found if entry not found
// Error: 500 Internal Server Error if retrieval fails
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "uuid")

	entry, err := h.journalService.GetEntry(entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrJournalEntryNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrJournalEntryNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveJournalEntry.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, entry)
}

// PostEntry handles POST requests to transition a draft entry to POSTED.
//
// Endpoint: POST /api/journal/{uuid}/post
// Response: 200 OK with the posted JournalEntry
// Error: 400 Bad Request if entry ID is invalid (validated by middleware)
// Error: 404 Not Found if entry not found
// Error: 409 Conflict if the entry is not in DRAFT status
// Error: 422 Unprocessable Entity if the entry no longer balances
// Error: 500 Internal Server Error if posting fails
func (h *JournalHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "uuid")

	entry, err := h.journalService.Post(r.Context(), entryID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrJournalEntryNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrJournalEntryNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidState):
			response.RespondError(w, http.StatusConflict, apperrors.ErrInvalidState.Error(), err.Error())
		case errors.Is(err, apperrors.ErrUnbalancedEntry):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrUnbalancedEntry.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to post journal entry", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, entry)
}

// VoidEntry handles POST requests to void a posted entry.
//
// Endpoint: POST /api/journal/{uuid}/void
// Response: 200 OK with the voided JournalEntry
// Error: 400 Bad Request if entry ID is invalid (validated by middleware)
// Error: 404 Not Found if entry not found
// Error: 409 Conflict if the entry is not in POSTED status
// Error: 500 Internal Server Error if voiding fails
func (h *JournalHandler) VoidEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "uuid")

	entry, err := h.journalService.Void(r.Context(), entryID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrJournalEntryNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrJournalEntryNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidState):
			response.RespondError(w, http.StatusConflict, apperrors.ErrInvalidState.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to void journal entry", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, entry)
}

// Ledger handles GET requests to stream an account's general ledger with
// running balance.
//
// Endpoint: GET /api/ledger/{uuid}?start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with array of LedgerRow
// Error: 400 Bad Request if account ID or dates are invalid
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if retrieval fails
func (h *JournalHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

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
	if start != nil && end != nil {
		if err := validation.ValidateDateRange(*start, *end); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
			return
		}
	}

	rows, err := h.journalService.GeneralLedger(accountID, start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLedger.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rows)
}

// BalanceResponse represents an account balance as of a date.
type BalanceResponse struct {
	AccountID string `json:"accountId"`
	AsOf      string `json:"asOf,omitempty"`
	Balance   string `json:"balance"`
}

// Balance handles GET requests to compute an account's balance.
//
// Endpoint: GET /api/ledger/{uuid}/balance?as_of=YYYY-MM-DD
// Response: 200 OK with BalanceResponse
// Error: 400 Bad Request if account ID or as_of is invalid
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if computation fails
func (h *JournalHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	asOf, err := parseOptionalDate(r, "as_of")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	balance, err := h.journalService.AccountBalance(accountID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLedger.Error(), err.Error())
		return
	}

	resp := BalanceResponse{
		AccountID: accountID,
		Balance:   balance.String(),
	}
	if asOf != nil {
		resp.AsOf = asOf.Format("2006-01-02")
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
