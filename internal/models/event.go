package models

import "time"

// Event is the minimal event record the engine needs: identity,
// authorship (for implicit owner access) and the set of event days
// bundles can span. Everything else about an event lives outside the
// core.
type Event struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	OrganizerID int       `json:"organizer_id" db:"organizer_id"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// EventDay is one calendar day of a multi-day event
type EventDay struct {
	ID      int       `json:"id" db:"id"`
	EventID int       `json:"event_id" db:"event_id"`
	Date    time.Time `json:"date" db:"date"`
	Label   string    `json:"label" db:"label"`
}
