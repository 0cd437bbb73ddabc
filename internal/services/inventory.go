package services

import (
	"fmt"
	"time"

	"boxoffice/internal/models"
)

// InventoryService handles ticket type setup and the allocation
// counters that guard against over-selling
type InventoryService struct {
	inventoryRepo InventoryRepository
	staffRepo     StaffRepository
}

// NewInventoryService creates a new inventory service
func NewInventoryService(inventoryRepo InventoryRepository, staffRepo StaffRepository) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		staffRepo:     staffRepo,
	}
}

// CreateTicketType creates a new ticket type for an event
func (s *InventoryService) CreateTicketType(req *models.TicketTypeCreateRequest) (*models.TicketType, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	event, err := s.staffRepo.GetEventByID(req.EventID)
	if err != nil {
		return nil, err
	}

	if !event.IsActive {
		return nil, fmt.Errorf("%w: event is not active", models.ErrInvalidInput)
	}

	return s.inventoryRepo.CreateTicketType(req)
}

// GetTicketTypeByID retrieves a ticket type by ID
func (s *InventoryService) GetTicketTypeByID(id int) (*models.TicketType, error) {
	return s.inventoryRepo.GetTicketTypeByID(id)
}

// GetTicketTypesByEvent retrieves all ticket types for an event
func (s *InventoryService) GetTicketTypesByEvent(eventID int) ([]*models.TicketType, error) {
	return s.inventoryRepo.GetTicketTypesByEvent(eventID)
}

// AllocateToSubpool carves quantity units out of the individually
// sellable pool for table or bundle sales
func (s *InventoryService) AllocateToSubpool(ticketTypeID int, kind models.AllocationKind, quantity int) error {
	return s.inventoryRepo.AllocateToSubpool(ticketTypeID, kind, quantity)
}

// RecordSale moves quantity units from available to sold
func (s *InventoryService) RecordSale(ticketTypeID, quantity int) error {
	return s.inventoryRepo.RecordSale(ticketTypeID, quantity)
}

// ReverseSale returns quantity units to the sellable pool
func (s *InventoryService) ReverseSale(ticketTypeID, quantity int) error {
	return s.inventoryRepo.ReverseSale(ticketTypeID, quantity)
}

// DeactivateTicketType takes a ticket type off sale without deleting
// its history
func (s *InventoryService) DeactivateTicketType(ticketTypeID int) error {
	return s.inventoryRepo.SetActive(ticketTypeID, false)
}

// CurrentPriceCents returns the sellable price of a ticket type right
// now, honoring a live early-bird window
func (s *InventoryService) CurrentPriceCents(ticketTypeID int) (int64, error) {
	ticketType, err := s.inventoryRepo.GetTicketTypeByID(ticketTypeID)
	if err != nil {
		return 0, err
	}
	return ticketType.CurrentPriceCents(time.Now()), nil
}
