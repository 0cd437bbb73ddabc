package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// StaffRepository handles events (for implicit ownership) and explicit
// per-event staff role grants
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// CreateEvent creates an event record
func (r *StaffRepository) CreateEvent(event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (title, organizer_id, start_date, end_date, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		query,
		event.Title,
		event.OrganizerID,
		event.StartDate,
		event.EndDate,
		true,
		time.Now(),
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	event.IsActive = true
	return event, nil
}

// GetEventByID retrieves an event by ID
func (r *StaffRepository) GetEventByID(id int) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.QueryRow(`
		SELECT id, title, organizer_id, start_date, end_date, is_active, created_at
		FROM events
		WHERE id = $1`, id).Scan(
		&event.ID,
		&event.Title,
		&event.OrganizerID,
		&event.StartDate,
		&event.EndDate,
		&event.IsActive,
		&event.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// CreateEventDay adds a calendar day to an event
func (r *StaffRepository) CreateEventDay(day *models.EventDay) (*models.EventDay, error) {
	err := r.db.QueryRow(`
		INSERT INTO event_days (event_id, date, label)
		VALUES ($1, $2, $3)
		RETURNING id`,
		day.EventID, day.Date, day.Label,
	).Scan(&day.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create event day: %w", err)
	}

	return day, nil
}

// GetEventDays retrieves the days of an event in calendar order
func (r *StaffRepository) GetEventDays(eventID int) ([]*models.EventDay, error) {
	rows, err := r.db.Query(`
		SELECT id, event_id, date, label
		FROM event_days
		WHERE event_id = $1
		ORDER BY date ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event days: %w", err)
	}
	defer rows.Close()

	var days []*models.EventDay
	for rows.Next() {
		day := &models.EventDay{}
		if err := rows.Scan(&day.ID, &day.EventID, &day.Date, &day.Label); err != nil {
			return nil, fmt.Errorf("failed to scan event day: %w", err)
		}
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event days: %w", err)
	}

	return days, nil
}

// GetGrant retrieves the explicit role grant for (event, user).
// Returns RoleNone when no grant exists.
func (r *StaffRepository) GetGrant(eventID, userID int) (models.StaffRole, error) {
	var role models.StaffRole
	err := r.db.QueryRow(`
		SELECT role FROM staff_grants
		WHERE event_id = $1 AND user_id = $2`, eventID, userID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.RoleNone, nil
		}
		return models.RoleNone, fmt.Errorf("failed to get staff grant: %w", err)
	}

	return role, nil
}

// UpsertGrant creates or replaces the role grant for (event, user)
func (r *StaffRepository) UpsertGrant(eventID, userID int, role models.StaffRole) error {
	query := `
		INSERT INTO staff_grants (event_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE SET role = $3`

	if _, err := r.db.Exec(query, eventID, userID, role, time.Now()); err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("failed to upsert staff grant: %w", err)
	}

	return nil
}

// DeleteGrant removes the explicit role grant for (event, user)
func (r *StaffRepository) DeleteGrant(eventID, userID int) error {
	if _, err := r.db.Exec(`DELETE FROM staff_grants WHERE event_id = $1 AND user_id = $2`, eventID, userID); err != nil {
		return fmt.Errorf("failed to delete staff grant: %w", err)
	}
	return nil
}
