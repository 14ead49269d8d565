package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvermeulen/portfolio-ledger/internal/api/response"
	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/service"
	"github.com/rvermeulen/portfolio-ledger/internal/validation"
)

// LotHandler handles security-lot and allocation HTTP requests
type LotHandler struct {
	lotService *service.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(lotService *service.LotService) *LotHandler {
	return &LotHandler{
		lotService: lotService,
	}
}

// LotsByTicker handles GET requests to list a ticker's lots, open and closed,
// in consumption order.
//
// Endpoint: GET /api/lots/{portfolioId}/{ticker}
// Response: 200 OK with array of SecurityLot
// Error: 400 Bad Request if portfolio ID is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *LotHandler) LotsByTicker(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")
	ticker := chi.URLParam(r, "ticker")

	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	lots, err := h.lotService.GetLots(portfolioID, ticker)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}

// AllocationsByTransaction handles GET requests to list the FIFO allocations
// a SELL transaction produced.
//
// Endpoint: GET /api/allocations/transaction/{uuid}
// Response: 200 OK with array of SecurityAllocation
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *LotHandler) AllocationsByTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	allocations, err := h.lotService.GetAllocationsByTransaction(transactionID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAllocations.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, allocations)
}
