package models

import "time"

// ScanResult represents the outcome of a check-in attempt. Results are
// normal outcomes returned to the scanning client, never errors.
type ScanResult string

const (
	ScanValid       ScanResult = "valid"
	ScanAlreadyUsed ScanResult = "already_used"
	ScanInvalid     ScanResult = "invalid"
)

// ScanMethod distinguishes normal device scans from staff overrides
type ScanMethod string

const (
	MethodScan     ScanMethod = "scan"
	MethodOverride ScanMethod = "override"
)

// ScanLog is one append-only audit record of a check-in attempt.
// Written for every attempt regardless of outcome, never read back to
// derive ticket state.
type ScanLog struct {
	ID         int        `json:"id" db:"id"`
	EventID    int        `json:"event_id" db:"event_id"`
	TicketID   *int       `json:"ticket_id,omitempty" db:"ticket_id"`
	EventDayID *int       `json:"event_day_id,omitempty" db:"event_day_id"`
	Identifier string     `json:"identifier" db:"identifier"`
	Result     ScanResult `json:"result" db:"result"`
	Method     ScanMethod `json:"method" db:"method"`
	ActorID    int        `json:"actor_id" db:"actor_id"`
	Reason     string     `json:"reason" db:"reason"`
	ScannedAt  time.Time  `json:"scanned_at" db:"scanned_at"`
}

// ScanLogFilters represents filters for scan log queries
type ScanLogFilters struct {
	EventID    int
	EventDayID int
	Result     ScanResult
	Limit      int
	Offset     int
}

// AttendanceSummary aggregates scan outcomes for one event
type AttendanceSummary struct {
	EventID     int `json:"event_id"`
	Valid       int `json:"valid"`
	AlreadyUsed int `json:"already_used"`
	Invalid     int `json:"invalid"`
	Overrides   int `json:"overrides"`
}
