package handlers

import (
	"net/http"

	"boxoffice/internal/middleware"
	"boxoffice/internal/models"
	"boxoffice/internal/services"
)

// SellerHandler serves the seller dashboard reads and the payout
// request write path. A seller can only see their own money; event
// staff with revenue access can see any seller they work for.
type SellerHandler struct {
	revenueService *services.RevenueService
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(revenueService *services.RevenueService) *SellerHandler {
	return &SellerHandler{revenueService: revenueService}
}

// sellerFromRequest parses the seller ID and verifies the caller is
// that seller
func sellerFromRequest(r *http.Request) (int, error) {
	sellerID, err := urlParamInt(r, "id")
	if err != nil {
		return 0, models.ErrInvalidInput
	}
	if middleware.UserIDFromContext(r.Context()) != sellerID {
		return 0, models.ErrUnauthorized
	}
	return sellerID, nil
}

// HandleBalance processes GET /api/sellers/{id}/balance
func (h *SellerHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	sellerID, err := sellerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.revenueService.GetSellerBalance(sellerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// HandleTransactions processes GET /api/sellers/{id}/transactions
func (h *SellerHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	sellerID, err := sellerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	transactions, total, err := h.revenueService.GetTransactionsBySeller(sellerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"total":        total,
	})
}

// HandleRequestPayout processes POST /api/sellers/{id}/payouts
func (h *SellerHandler) HandleRequestPayout(w http.ResponseWriter, r *http.Request) {
	sellerID, err := sellerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req models.PayoutCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	payout, err := h.revenueService.RequestPayout(sellerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, payout)
}

// HandleListPayouts processes GET /api/sellers/{id}/payouts
func (h *SellerHandler) HandleListPayouts(w http.ResponseWriter, r *http.Request) {
	sellerID, err := sellerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	payouts, err := h.revenueService.GetPayoutsBySeller(sellerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payouts)
}
