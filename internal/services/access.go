package services

import (
	"fmt"

	"boxoffice/internal/models"
)

// AccessService resolves what a user may do for one event. The event's
// organizer is always owner; everyone else gets whatever an explicit
// grant says, or nothing.
type AccessService struct {
	staffRepo StaffRepository
}

// NewAccessService creates a new access service
func NewAccessService(staffRepo StaffRepository) *AccessService {
	return &AccessService{staffRepo: staffRepo}
}

// CreateEvent registers an event and its days
func (s *AccessService) CreateEvent(event *models.Event, days []*models.EventDay) (*models.Event, error) {
	if event.Title == "" || event.OrganizerID <= 0 {
		return nil, fmt.Errorf("%w: event title and organizer are required", models.ErrInvalidInput)
	}

	created, err := s.staffRepo.CreateEvent(event)
	if err != nil {
		return nil, err
	}

	for _, day := range days {
		day.EventID = created.ID
		if _, err := s.staffRepo.CreateEventDay(day); err != nil {
			return nil, err
		}
	}

	return created, nil
}

// GetEventByID retrieves an event
func (s *AccessService) GetEventByID(id int) (*models.Event, error) {
	return s.staffRepo.GetEventByID(id)
}

// GetEventDays returns the days of an event in date order
func (s *AccessService) GetEventDays(eventID int) ([]*models.EventDay, error) {
	return s.staffRepo.GetEventDays(eventID)
}

// ResolveAccess computes the capability set for (event, user)
func (s *AccessService) ResolveAccess(eventID, userID int) (*models.StaffAccess, error) {
	event, err := s.staffRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}

	role := models.RoleNone
	if event.OrganizerID == userID {
		role = models.RoleOwner
	} else {
		granted, err := s.staffRepo.GetGrant(eventID, userID)
		if err != nil {
			return nil, err
		}
		role = granted
	}

	return &models.StaffAccess{
		Role:        role,
		Permissions: models.PermissionsForRole(role),
	}, nil
}

// Require returns nil when the user holds the permission for the
// event, models.ErrUnauthorized otherwise
func (s *AccessService) Require(eventID, userID int, perm models.Permission) error {
	access, err := s.ResolveAccess(eventID, userID)
	if err != nil {
		return err
	}
	if !access.Can(perm) {
		return models.ErrUnauthorized
	}
	return nil
}

// GrantRole assigns or updates a user's role for an event. Only roles
// besides owner can be granted; ownership follows event authorship.
func (s *AccessService) GrantRole(eventID, userID int, role models.StaffRole) error {
	switch role {
	case models.RoleManager, models.RoleScanner, models.RoleOrganizer:
	case models.RoleOwner:
		return fmt.Errorf("%w: owner role cannot be granted explicitly", models.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, role)
	}

	if _, err := s.staffRepo.GetEventByID(eventID); err != nil {
		return err
	}

	return s.staffRepo.UpsertGrant(eventID, userID, role)
}

// RevokeRole removes a user's explicit grant for an event
func (s *AccessService) RevokeRole(eventID, userID int) error {
	return s.staffRepo.DeleteGrant(eventID, userID)
}
