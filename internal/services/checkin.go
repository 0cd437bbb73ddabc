package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"boxoffice/internal/models"
)

// ScanOutcome is the answer handed back to the door device. Result is
// always one of the three scan results; Ticket is set whenever the
// identifier resolved to a real ticket, including already_used hits so
// the scanner can show who consumed it and when.
type ScanOutcome struct {
	Result models.ScanResult `json:"result"`
	Ticket *models.Ticket    `json:"ticket,omitempty"`
}

// CheckinService consumes tickets at the door. A scan is never an
// error from the caller's point of view: lookup misses, wrong-event
// codes and double scans all come back as normal outcomes, and every
// attempt is appended to the audit trail whatever the result.
type CheckinService struct {
	ticketRepo  TicketRepository
	scanLogRepo ScanLogRepository
	staffRepo   StaffRepository
}

// NewCheckinService creates a new check-in service
func NewCheckinService(ticketRepo TicketRepository, scanLogRepo ScanLogRepository, staffRepo StaffRepository) *CheckinService {
	return &CheckinService{
		ticketRepo:  ticketRepo,
		scanLogRepo: scanLogRepo,
		staffRepo:   staffRepo,
	}
}

// ScanTicket attempts to consume an individual ticket. The identifier
// is tried as a numeric ticket ID first, then as a short code. Of N
// concurrent scans of the same ticket exactly one receives valid; the
// rest receive already_used.
func (s *CheckinService) ScanTicket(eventID int, identifier string, actorID int) (*ScanOutcome, error) {
	now := time.Now()

	ticket, err := s.resolveTicket(identifier)
	if err != nil {
		if errors.Is(err, models.ErrTicketNotFound) {
			return s.logOutcome(eventID, nil, nil, identifier, models.ScanInvalid, models.MethodScan, actorID, "unknown ticket", now)
		}
		return nil, err
	}
	if ticket.EventID != eventID {
		return s.logOutcome(eventID, nil, nil, identifier, models.ScanInvalid, models.MethodScan, actorID, "wrong event", now)
	}
	if ticket.IsBundleTicket {
		return s.logOutcome(eventID, &ticket.ID, nil, identifier, models.ScanInvalid, models.MethodScan, actorID, "bundle ticket requires day scan", now, ticket)
	}

	switch ticket.Status {
	case models.TicketCancelled, models.TicketRefunded:
		return s.logOutcome(eventID, &ticket.ID, nil, identifier, models.ScanInvalid, models.MethodScan, actorID, string(ticket.Status), now, ticket)
	case models.TicketUsed:
		return s.logOutcome(eventID, &ticket.ID, nil, identifier, models.ScanAlreadyUsed, models.MethodScan, actorID, "", now, ticket)
	}

	won, err := s.ticketRepo.MarkUsed(ticket.ID, actorID, now)
	if err != nil {
		return nil, err
	}

	result := models.ScanAlreadyUsed
	if won {
		result = models.ScanValid
		ticket.Status = models.TicketUsed
		ticket.Scanned = true
		ticket.ScannedAt = &now
		ticket.ScannedBy = &actorID
	} else {
		// Lost the race; reload so the outcome carries the winner's
		// scan details
		if fresh, rerr := s.ticketRepo.GetTicketByID(ticket.ID); rerr == nil {
			ticket = fresh
		}
	}

	return s.logOutcome(eventID, &ticket.ID, nil, identifier, result, models.MethodScan, actorID, "", now, ticket)
}

// ScanBundleTicket attempts to consume one day of a bundle ticket.
// Each included day is consumed independently: scanning the master
// code on day 2 is unaffected by day 1 having been used, and a second
// scan on the same day comes back already_used.
func (s *CheckinService) ScanBundleTicket(eventID int, code string, eventDayID, actorID int) (*ScanOutcome, error) {
	now := time.Now()

	ticket, err := s.ticketRepo.GetBundleTicketForDay(code, eventDayID)
	if err != nil {
		if errors.Is(err, models.ErrTicketNotFound) {
			return s.logOutcome(eventID, nil, &eventDayID, code, models.ScanInvalid, models.MethodScan, actorID, "no ticket for day", now)
		}
		return nil, err
	}

	if ticket.EventID != eventID {
		return s.logOutcome(eventID, nil, &eventDayID, code, models.ScanInvalid, models.MethodScan, actorID, "wrong event", now)
	}

	if ticket.Status == models.TicketCancelled || ticket.Status == models.TicketRefunded {
		return s.logOutcome(eventID, &ticket.ID, &eventDayID, code, models.ScanInvalid, models.MethodScan, actorID, string(ticket.Status), now, ticket)
	}

	won, err := s.ticketRepo.MarkDayUsed(ticket.ID, eventDayID, actorID, now)
	if err != nil {
		return nil, err
	}

	result := models.ScanAlreadyUsed
	if won {
		result = models.ScanValid
		ticket.Status = models.TicketUsed
		ticket.Scanned = true
		ticket.ScannedAt = &now
		ticket.ScannedBy = &actorID
	}

	return s.logOutcome(eventID, &ticket.ID, &eventDayID, code, result, models.MethodScan, actorID, "", now, ticket)
}

// ManualCheckIn force-consumes a ticket without its physical code, for
// door staff handling a lost ticket. Requires a reason for the audit
// trail and skips the already-used check on purpose.
func (s *CheckinService) ManualCheckIn(eventID, ticketID, actorID int, reason string) (*ScanOutcome, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: override reason is required", models.ErrInvalidInput)
	}

	now := time.Now()

	ticket, err := s.ticketRepo.GetTicketByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.EventID != eventID {
		return nil, models.ErrTicketNotFound
	}
	if ticket.Status == models.TicketCancelled || ticket.Status == models.TicketRefunded {
		return s.logOutcome(eventID, &ticket.ID, ticket.EventDayID, ticket.TicketCode, models.ScanInvalid, models.MethodOverride, actorID, reason, now, ticket)
	}

	if err := s.ticketRepo.ForceUse(ticket.ID, actorID, now); err != nil {
		return nil, err
	}
	if ticket.IsBundleTicket && ticket.EventDayID != nil {
		// Keep the per-day record in step so day scans and usage
		// reports see the override too
		if _, err := s.ticketRepo.MarkDayUsed(ticket.ID, *ticket.EventDayID, actorID, now); err != nil {
			return nil, err
		}
	}
	ticket.Status = models.TicketUsed
	ticket.Scanned = true
	ticket.ScannedAt = &now
	ticket.ScannedBy = &actorID

	return s.logOutcome(eventID, &ticket.ID, ticket.EventDayID, ticket.TicketCode, models.ScanValid, models.MethodOverride, actorID, reason, now, ticket)
}

// resolveTicket tries the identifier as a numeric ticket ID, then as
// a short code
func (s *CheckinService) resolveTicket(identifier string) (*models.Ticket, error) {
	if id, err := strconv.Atoi(identifier); err == nil {
		if ticket, err := s.ticketRepo.GetTicketByID(id); err == nil {
			return ticket, nil
		}
	}
	return s.ticketRepo.GetTicketByCode(identifier)
}

// GetScanLogs returns audit records matching the filters
func (s *CheckinService) GetScanLogs(filters models.ScanLogFilters) ([]*models.ScanLog, int, error) {
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	return s.scanLogRepo.Search(filters)
}

// GetAttendance aggregates scan outcomes for an event
func (s *CheckinService) GetAttendance(eventID int) (*models.AttendanceSummary, error) {
	if _, err := s.staffRepo.GetEventByID(eventID); err != nil {
		return nil, err
	}
	return s.scanLogRepo.Attendance(eventID)
}

// GetDayUsage returns the consumed days of a bundle ticket
func (s *CheckinService) GetDayUsage(ticketID int) ([]*models.DayUsage, error) {
	return s.ticketRepo.GetDayUsage(ticketID)
}

// logOutcome appends the audit record and packages the outcome. The
// log write is best-effort ordering-wise but a failure surfaces as an
// error because the trail is required to be complete.
func (s *CheckinService) logOutcome(
	eventID int,
	ticketID *int,
	eventDayID *int,
	identifier string,
	result models.ScanResult,
	method models.ScanMethod,
	actorID int,
	reason string,
	at time.Time,
	ticket ...*models.Ticket,
) (*ScanOutcome, error) {
	err := s.scanLogRepo.Append(&models.ScanLog{
		EventID:    eventID,
		TicketID:   ticketID,
		EventDayID: eventDayID,
		Identifier: identifier,
		Result:     result,
		Method:     method,
		ActorID:    actorID,
		Reason:     reason,
		ScannedAt:  at,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append scan log: %w", err)
	}

	outcome := &ScanOutcome{Result: result}
	if len(ticket) > 0 {
		outcome.Ticket = ticket[0]
	}
	return outcome, nil
}
