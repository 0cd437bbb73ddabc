package services

import (
	"errors"
	"fmt"
	"time"

	"boxoffice/internal/models"
	"boxoffice/internal/utils"
)

// Attempts to regenerate a ticket code after a storage-level collision
const codeRetries = 5

// IssueRequest represents a request to issue individual tickets from a
// confirmed purchase. PurchaseRef is the payment provider's reference
// and doubles as the idempotency key for redelivered webhooks.
type IssueRequest struct {
	EventID      int    `json:"event_id"`
	TicketTypeID int    `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	PurchaseRef  string `json:"purchase_ref"`
	SeatLabel    string `json:"seat_label"`
}

// Validate validates the issue request
func (req *IssueRequest) Validate() error {
	if req.PurchaseRef == "" {
		return errors.New("purchase reference is required")
	}
	if req.Quantity <= 0 || req.Quantity > 100 {
		return errors.New("quantity must be between 1 and 100")
	}
	if req.EventID <= 0 || req.TicketTypeID <= 0 {
		return errors.New("event and ticket type references are required")
	}
	return nil
}

// IssuerService mints tickets from confirmed purchases. Individual
// issuance is one inventory decrement plus N ticket rows; bundle
// issuance is N coordinated decrements that either all succeed or are
// all compensated before the error returns.
type IssuerService struct {
	inventoryRepo   InventoryRepository
	ticketRepo      TicketRepository
	staffRepo       StaffRepository
	idempotencyRepo IdempotencyRepository
	qrBaseURL       string
	codeLength      int
}

// NewIssuerService creates a new issuer service
func NewIssuerService(
	inventoryRepo InventoryRepository,
	ticketRepo TicketRepository,
	staffRepo StaffRepository,
	idempotencyRepo IdempotencyRepository,
	qrBaseURL string,
	codeLength int,
) *IssuerService {
	return &IssuerService{
		inventoryRepo:   inventoryRepo,
		ticketRepo:      ticketRepo,
		staffRepo:       staffRepo,
		idempotencyRepo: idempotencyRepo,
		qrBaseURL:       qrBaseURL,
		codeLength:      codeLength,
	}
}

// IssueIndividualTickets records the sale against inventory and mints
// quantity tickets with unique codes and the price frozen at the
// moment of sale. A redelivered purchase reference returns the
// originally minted tickets without touching inventory.
func (s *IssuerService) IssueIndividualTickets(req *IssueRequest) ([]*models.Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	ticketType, err := s.checkSellable(req.EventID, req.TicketTypeID)
	if err != nil {
		return nil, err
	}

	claimed, _, err := s.idempotencyRepo.Claim("issue:"+req.PurchaseRef, "ticket_issue")
	if err != nil {
		return nil, err
	}
	if !claimed {
		return s.ticketRepo.GetTicketsByPurchaseRef(req.PurchaseRef)
	}

	if err := s.inventoryRepo.RecordSale(req.TicketTypeID, req.Quantity); err != nil {
		s.idempotencyRepo.Release("issue:" + req.PurchaseRef)
		return nil, err
	}

	priceCents := ticketType.CurrentPriceCents(time.Now())

	tickets := make([]*models.Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		ticket, err := s.mintTicket(&models.Ticket{
			EventID:      req.EventID,
			TicketTypeID: req.TicketTypeID,
			PurchaseRef:  req.PurchaseRef,
			SeatLabel:    req.SeatLabel,
			PriceCents:   priceCents,
			Status:       models.TicketValid,
		})
		if err != nil {
			s.compensateIssue(req, tickets)
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if len(tickets) > 0 {
		s.idempotencyRepo.SetResult("issue:"+req.PurchaseRef, tickets[0].ID)
	}

	return tickets, nil
}

// IssueCompTickets mints complimentary tickets outside the payment
// flow, under a generated internal purchase reference. Inventory is
// decremented as for a paid sale; no transaction is recorded, so the
// seller's balance is untouched.
func (s *IssuerService) IssueCompTickets(eventID, ticketTypeID, quantity int, seatLabel string) ([]*models.Ticket, error) {
	return s.IssueIndividualTickets(&IssueRequest{
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
		Quantity:     quantity,
		PurchaseRef:  utils.GeneratePurchaseRef(),
		SeatLabel:    seatLabel,
	})
}

// IssueBundle mints one master access code shared by one day-scoped
// ticket per included day. Each day's inventory is decremented
// independently; if any day fails, every prior decrement is reversed
// before the error is returned.
func (s *IssuerService) IssueBundle(req *models.BundleIssueRequest) (*models.BundlePurchase, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	dayPrices := make([]int64, len(req.Days))
	now := time.Now()
	for i, day := range req.Days {
		ticketType, err := s.checkSellable(req.EventID, day.TicketTypeID)
		if err != nil {
			return nil, err
		}
		dayPrices[i] = ticketType.CurrentPriceCents(now)
	}

	claimed, _, err := s.idempotencyRepo.Claim("bundle:"+req.PurchaseRef, "bundle_issue")
	if err != nil {
		return nil, err
	}
	if !claimed {
		tickets, err := s.ticketRepo.GetTicketsByPurchaseRef(req.PurchaseRef)
		if err != nil || len(tickets) == 0 {
			return nil, models.ErrBundleNotFound
		}
		return s.ticketRepo.GetBundleByCode(tickets[0].TicketCode)
	}

	// Decrement each day, compensating every committed decrement if a
	// later day fails
	var recorded []models.BundleDay
	for _, day := range req.Days {
		if err := s.inventoryRepo.RecordSale(day.TicketTypeID, 1); err != nil {
			for _, done := range recorded {
				s.inventoryRepo.ReverseSale(done.TicketTypeID, 1)
			}
			s.idempotencyRepo.Release("bundle:" + req.PurchaseRef)
			return nil, err
		}
		recorded = append(recorded, day)
	}

	bundle, err := s.createBundleRecords(req, dayPrices)
	if err != nil {
		for _, done := range recorded {
			s.inventoryRepo.ReverseSale(done.TicketTypeID, 1)
		}
		s.idempotencyRepo.Release("bundle:" + req.PurchaseRef)
		return nil, err
	}

	s.idempotencyRepo.SetResult("bundle:"+req.PurchaseRef, bundle.ID)
	return bundle, nil
}

// GetTicketsByPurchaseRef returns the tickets minted for a purchase
func (s *IssuerService) GetTicketsByPurchaseRef(purchaseRef string) ([]*models.Ticket, error) {
	return s.ticketRepo.GetTicketsByPurchaseRef(purchaseRef)
}

// GetTicketByID retrieves one issued ticket
func (s *IssuerService) GetTicketByID(id int) (*models.Ticket, error) {
	return s.ticketRepo.GetTicketByID(id)
}

// checkSellable verifies the event exists and the ticket type is an
// active SKU of that event
func (s *IssuerService) checkSellable(eventID, ticketTypeID int) (*models.TicketType, error) {
	event, err := s.staffRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, models.ErrEventNotFound
	}

	ticketType, err := s.inventoryRepo.GetTicketTypeByID(ticketTypeID)
	if err != nil {
		return nil, err
	}
	if ticketType.EventID != eventID {
		return nil, fmt.Errorf("%w: ticket type does not belong to event", models.ErrInvalidInput)
	}
	if !ticketType.IsActive {
		return nil, models.ErrTicketTypeInactive
	}

	return ticketType, nil
}

// mintTicket inserts a ticket with a freshly generated code, retrying
// on code collision
func (s *IssuerService) mintTicket(ticket *models.Ticket) (*models.Ticket, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := utils.GenerateTicketCode(s.codeLength)
		if err != nil {
			return nil, err
		}

		ticket.TicketCode = code
		ticket.QRPayload = utils.QRPayload(s.qrBaseURL, code)

		created, err := s.ticketRepo.CreateTicket(ticket)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, models.ErrDuplicateEntry) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to generate unique ticket code after %d attempts", codeRetries)
}

// compensateIssue unwinds a partially completed individual issuance:
// the inventory decrement is reversed in full and any minted tickets
// are cancelled
func (s *IssuerService) compensateIssue(req *IssueRequest, minted []*models.Ticket) {
	s.inventoryRepo.ReverseSale(req.TicketTypeID, req.Quantity)
	for _, ticket := range minted {
		s.ticketRepo.UpdateTicketStatus(ticket.ID, models.TicketCancelled)
	}
	s.idempotencyRepo.Release("issue:" + req.PurchaseRef)
}

// createBundleRecords writes the bundle purchase and its day tickets,
// all sharing one master code and QR payload
func (s *IssuerService) createBundleRecords(req *models.BundleIssueRequest, dayPrices []int64) (*models.BundlePurchase, error) {
	var total int64
	for _, p := range dayPrices {
		total += p
	}

	var bundle *models.BundlePurchase
	var masterCode string

	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := utils.GenerateTicketCode(s.codeLength)
		if err != nil {
			return nil, err
		}

		created, err := s.ticketRepo.CreateBundle(&models.BundlePurchase{
			EventID:     req.EventID,
			BuyerID:     req.BuyerID,
			PurchaseRef: req.PurchaseRef,
			AccessCode:  code,
			QRPayload:   utils.QRPayload(s.qrBaseURL, code),
			TotalCents:  total,
			Days:        req.Days,
		})
		if err == nil {
			bundle = created
			masterCode = code
			break
		}
		if !errors.Is(err, models.ErrDuplicateEntry) {
			return nil, err
		}
	}
	if bundle == nil {
		return nil, fmt.Errorf("failed to generate unique bundle code after %d attempts", codeRetries)
	}

	bundleID := bundle.ID
	for i, day := range req.Days {
		dayID := day.EventDayID
		ticket, err := s.ticketRepo.CreateTicket(&models.Ticket{
			TicketCode:     masterCode,
			QRPayload:      bundle.QRPayload,
			EventID:        req.EventID,
			TicketTypeID:   day.TicketTypeID,
			PurchaseRef:    req.PurchaseRef,
			PriceCents:     dayPrices[i],
			Status:         models.TicketValid,
			IsBundleTicket: true,
			BundleID:       &bundleID,
			EventDayID:     &dayID,
		})
		if err != nil {
			for _, id := range bundle.TicketIDs {
				s.ticketRepo.UpdateTicketStatus(id, models.TicketCancelled)
			}
			return nil, err
		}
		bundle.TicketIDs = append(bundle.TicketIDs, ticket.ID)
	}

	return bundle, nil
}
