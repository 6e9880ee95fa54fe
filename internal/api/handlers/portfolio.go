package handlers

import (
	"errors"
	"net/http"

	"github.com/cryptofolio/backend/internal/api/response"
	"github.com/cryptofolio/backend/internal/apperrors"
	"github.com/cryptofolio/backend/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio valuation endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolio and history services.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	historyService   *service.HistoryService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependencies.
func NewPortfolioHandler(portfolioService *service.PortfolioService, historyService *service.HistoryService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		historyService:   historyService,
	}
}

// Current handles GET requests for the live portfolio valuation.
//
// Endpoint: GET /api/portfolio/current?userId=
// Response: 200 OK with Portfolio (empty assets and zero totals for an empty ledger)
// Error: 400 Bad Request if userId is missing
// Error: 500 Internal Server Error if the ledger store is unreachable
func (h *PortfolioHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrMissingUserID.Error(), nil)
		return
	}

	portfolio, err := h.portfolioService.GetCurrentPortfolio(r.Context(), userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetPortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// History handles GET requests for the daily portfolio value series.
//
// Endpoint: GET /api/portfolio/history?userId=&range={7d|30d|1y}
// Response: 200 OK with PortfolioHistory
// Error: 400 Bad Request if userId is missing or range is not one of 7d, 30d, 1y
// Error: 500 Internal Server Error if the ledger store is unreachable
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrMissingUserID.Error(), nil)
		return
	}

	rng := r.URL.Query().Get("range")

	history, err := h.historyService.GetHistory(r.Context(), userID, rng)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRange.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetPortfolioHistory.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}
