package handlers

import (
	"net/http"

	"boxoffice/internal/middleware"
	"boxoffice/internal/models"
	"boxoffice/internal/monitoring"
	"boxoffice/internal/services"
)

// AdminHandler serves the back-office operations: refunds, payout
// completion, staff grants and affiliate programs
type AdminHandler struct {
	revenueService *services.RevenueService
	accessService  *services.AccessService
	metrics        *monitoring.Metrics
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	revenueService *services.RevenueService,
	accessService *services.AccessService,
	metrics *monitoring.Metrics,
) *AdminHandler {
	return &AdminHandler{
		revenueService: revenueService,
		accessService:  accessService,
		metrics:        metrics,
	}
}

// RefundRequest asks for a partial or full refund of a transaction
type RefundRequest struct {
	TransactionID int   `json:"transaction_id"`
	RefundCents   int64 `json:"refund_cents"`
}

// HandleRefund processes POST /api/admin/refunds
func (h *AdminHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	txn, err := h.revenueService.GetTransactionByID(req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(txn.EventID, actorID, models.PermManagePayouts); err != nil {
		writeError(w, err)
		return
	}

	refunded, err := h.revenueService.ProcessRefund(req.TransactionID, req.RefundCents)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.RefundsTotal.Inc()
	writeJSON(w, http.StatusOK, refunded)
}

// HandleCompletePayout processes POST /api/admin/payouts/{id}/complete
func (h *AdminHandler) HandleCompletePayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := urlParamInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payout ID"})
		return
	}

	payout, err := h.revenueService.CompletePayout(payoutID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.PayoutsTotal.Inc()
	writeJSON(w, http.StatusOK, payout)
}

// StaffGrantRequest assigns a role for an event
type StaffGrantRequest struct {
	UserID int              `json:"user_id"`
	Role   models.StaffRole `json:"role"`
}

// HandleGrantRole processes POST /api/events/{eventID}/staff. Only the
// event owner may manage staff.
func (h *AdminHandler) HandleGrantRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	if err := h.requireOwner(r, eventID); err != nil {
		writeError(w, err)
		return
	}

	var req StaffGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.accessService.GrantRole(eventID, req.UserID, req.Role); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeRole processes DELETE /api/events/{eventID}/staff/{userID}
func (h *AdminHandler) HandleRevokeRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user ID"})
		return
	}

	if err := h.requireOwner(r, eventID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accessService.RevokeRole(eventID, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateAffiliateProgram processes POST /api/events/{eventID}/affiliates
func (h *AdminHandler) HandleCreateAffiliateProgram(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(eventID, actorID, models.PermViewRevenue); err != nil {
		writeError(w, err)
		return
	}

	var req models.AffiliateProgramCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	req.EventID = eventID

	program, err := h.revenueService.CreateAffiliateProgram(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, program)
}

// CreateEventRequest registers an event and its days
type CreateEventRequest struct {
	Event *models.Event      `json:"event"`
	Days  []*models.EventDay `json:"days"`
}

// HandleCreateEvent processes POST /api/events. The caller becomes the
// event's organizer and implicit owner.
func (h *AdminHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := decodeJSON(r, &req); err != nil || req.Event == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	req.Event.OrganizerID = middleware.UserIDFromContext(r.Context())
	req.Event.IsActive = true

	event, err := h.accessService.CreateEvent(req.Event, req.Days)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// requireOwner verifies the caller is the event's implicit owner
func (h *AdminHandler) requireOwner(r *http.Request, eventID int) error {
	actorID := middleware.UserIDFromContext(r.Context())
	access, err := h.accessService.ResolveAccess(eventID, actorID)
	if err != nil {
		return err
	}
	if access.Role != models.RoleOwner {
		return models.ErrUnauthorized
	}
	return nil
}
