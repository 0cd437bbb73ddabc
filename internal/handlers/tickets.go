package handlers

import (
	"net/http"

	"github.com/skip2/go-qrcode"

	"boxoffice/internal/middleware"
	"boxoffice/internal/models"
	"boxoffice/internal/services"
)

// TicketHandler serves issued-ticket reads, QR rendering and the
// inventory management endpoints
type TicketHandler struct {
	issuerService    *services.IssuerService
	inventoryService *services.InventoryService
	accessService    *services.AccessService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	issuerService *services.IssuerService,
	inventoryService *services.InventoryService,
	accessService *services.AccessService,
) *TicketHandler {
	return &TicketHandler{
		issuerService:    issuerService,
		inventoryService: inventoryService,
		accessService:    accessService,
	}
}

// HandleGetTicket processes GET /api/tickets/{id}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid ticket ID"})
		return
	}

	ticket, err := h.issuerService.GetTicketByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// HandleTicketQR processes GET /api/tickets/{id}/qr, rendering the
// ticket's QR payload as a PNG
func (h *TicketHandler) HandleTicketQR(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid ticket ID"})
		return
	}

	ticket, err := h.issuerService.GetTicketByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	png, err := qrcode.Encode(ticket.QRPayload, qrcode.Medium, 256)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// HandleTicketsByPurchase processes GET /api/purchases/{ref}/tickets
func (h *TicketHandler) HandleTicketsByPurchase(w http.ResponseWriter, r *http.Request) {
	ref := urlParamString(r, "ref")
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "purchase reference is required"})
		return
	}

	tickets, err := h.issuerService.GetTicketsByPurchaseRef(ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

// HandleCreateTicketType processes POST /api/events/{eventID}/ticket-types
func (h *TicketHandler) HandleCreateTicketType(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(eventID, actorID, models.PermManageInventory); err != nil {
		writeError(w, err)
		return
	}

	var req models.TicketTypeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	req.EventID = eventID

	created, err := h.inventoryService.CreateTicketType(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// CompTicketRequest issues complimentary tickets outside the payment
// flow, e.g. press or guest passes
type CompTicketRequest struct {
	TicketTypeID int    `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	SeatLabel    string `json:"seat_label"`
}

// HandleCompTickets processes POST /api/events/{eventID}/comp-tickets
func (h *TicketHandler) HandleCompTickets(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(eventID, actorID, models.PermManageInventory); err != nil {
		writeError(w, err)
		return
	}

	var req CompTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	tickets, err := h.issuerService.IssueCompTickets(eventID, req.TicketTypeID, req.Quantity, req.SeatLabel)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tickets)
}

// HandleListTicketTypes processes GET /api/events/{eventID}/ticket-types
func (h *TicketHandler) HandleListTicketTypes(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	ticketTypes, err := h.inventoryService.GetTicketTypesByEvent(eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticketTypes)
}

// AllocateRequest carves units out of the sellable pool
type AllocateRequest struct {
	Kind     models.AllocationKind `json:"kind"`
	Quantity int                   `json:"quantity"`
}

// HandleAllocate processes POST /api/admin/ticket-types/{id}/allocate
func (h *TicketHandler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid ticket type ID"})
		return
	}

	ticketType, err := h.inventoryService.GetTicketTypeByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(ticketType.EventID, actorID, models.PermManageInventory); err != nil {
		writeError(w, err)
		return
	}

	var req AllocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "quantity must be greater than 0"})
		return
	}
	switch req.Kind {
	case models.AllocationTable, models.AllocationBundle:
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "kind must be table or bundle"})
		return
	}

	if err := h.inventoryService.AllocateToSubpool(id, req.Kind, req.Quantity); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.inventoryService.GetTicketTypeByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDeactivateTicketType processes DELETE /api/ticket-types/{id}
func (h *TicketHandler) HandleDeactivateTicketType(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid ticket type ID"})
		return
	}

	ticketType, err := h.inventoryService.GetTicketTypeByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(ticketType.EventID, actorID, models.PermManageInventory); err != nil {
		writeError(w, err)
		return
	}

	if err := h.inventoryService.DeactivateTicketType(id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
