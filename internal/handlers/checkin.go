package handlers

import (
	"net/http"

	"boxoffice/internal/middleware"
	"boxoffice/internal/models"
	"boxoffice/internal/monitoring"
	"boxoffice/internal/services"
)

// ScanRequest is a door device's check-in attempt
type ScanRequest struct {
	EventID    int    `json:"event_id"`
	Code       string `json:"code"`
	EventDayID int    `json:"event_day_id,omitempty"`
}

// ManualCheckInRequest is a staff override for a lost ticket
type ManualCheckInRequest struct {
	EventID  int    `json:"event_id"`
	TicketID int    `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// CheckinHandler exposes the door-side scanning endpoints
type CheckinHandler struct {
	checkinService *services.CheckinService
	accessService  *services.AccessService
	metrics        *monitoring.Metrics
}

// NewCheckinHandler creates a new check-in handler
func NewCheckinHandler(
	checkinService *services.CheckinService,
	accessService *services.AccessService,
	metrics *monitoring.Metrics,
) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
		accessService:  accessService,
		metrics:        metrics,
	}
}

// HandleScan processes POST /api/scan
func (h *CheckinHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(req.EventID, actorID, models.PermCheckIn); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.checkinService.ScanTicket(req.EventID, req.Code, actorID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.ScanOutcomes.WithLabelValues(string(outcome.Result)).Inc()
	writeJSON(w, http.StatusOK, outcome)
}

// HandleScanBundle processes POST /api/scan/bundle
func (h *CheckinHandler) HandleScanBundle(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.EventDayID <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "event_day_id is required"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(req.EventID, actorID, models.PermCheckIn); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.checkinService.ScanBundleTicket(req.EventID, req.Code, req.EventDayID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.ScanOutcomes.WithLabelValues(string(outcome.Result)).Inc()
	writeJSON(w, http.StatusOK, outcome)
}

// HandleManualCheckIn processes POST /api/checkin/manual
func (h *CheckinHandler) HandleManualCheckIn(w http.ResponseWriter, r *http.Request) {
	var req ManualCheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(req.EventID, actorID, models.PermManualOverride); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.checkinService.ManualCheckIn(req.EventID, req.TicketID, actorID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.ScanOutcomes.WithLabelValues(string(outcome.Result)).Inc()
	writeJSON(w, http.StatusOK, outcome)
}

// HandleScanLogs processes GET /api/events/{eventID}/scan-logs
func (h *CheckinHandler) HandleScanLogs(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(eventID, actorID, models.PermCheckIn); err != nil {
		writeError(w, err)
		return
	}

	filters := models.ScanLogFilters{
		EventID:    eventID,
		EventDayID: queryInt(r, "event_day_id", 0),
		Result:     models.ScanResult(r.URL.Query().Get("result")),
		Limit:      queryInt(r, "limit", 50),
		Offset:     queryInt(r, "offset", 0),
	}

	logs, total, err := h.checkinService.GetScanLogs(filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}

// HandleAttendance processes GET /api/events/{eventID}/attendance
func (h *CheckinHandler) HandleAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event ID"})
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	if err := h.accessService.Require(eventID, actorID, models.PermCheckIn); err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.checkinService.GetAttendance(eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
