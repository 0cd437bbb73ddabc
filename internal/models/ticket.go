package models

import (
	"errors"
	"time"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketValid     TicketStatus = "valid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// Ticket represents one issued, checkable unit.
//
// For bundle tickets the code and QR payload are shared with every
// other day-ticket of the same bundle; day-scoped consumption is
// tracked per ticket through DayUsage rows, not the scanned flag.
type Ticket struct {
	ID           int          `json:"id" db:"id"`
	TicketCode   string       `json:"ticket_code" db:"ticket_code"`
	QRPayload    string       `json:"qr_payload" db:"qr_payload"`
	EventID      int          `json:"event_id" db:"event_id"`
	TicketTypeID int          `json:"ticket_type_id" db:"ticket_type_id"`
	PurchaseRef  string       `json:"purchase_ref" db:"purchase_ref"`
	SeatLabel    string       `json:"seat_label" db:"seat_label"`
	PriceCents   int64        `json:"price_cents" db:"price_cents"`
	Status       TicketStatus `json:"status" db:"status"`
	Scanned      bool         `json:"scanned" db:"scanned"`
	ScannedAt    *time.Time   `json:"scanned_at,omitempty" db:"scanned_at"`
	ScannedBy    *int         `json:"scanned_by,omitempty" db:"scanned_by"`

	IsBundleTicket bool `json:"is_bundle_ticket" db:"is_bundle_ticket"`
	BundleID       *int `json:"bundle_id,omitempty" db:"bundle_id"`
	EventDayID     *int `json:"event_day_id,omitempty" db:"event_day_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DayUsage records one consumed day of a bundle ticket. Append-only.
type DayUsage struct {
	ID         int       `json:"id" db:"id"`
	TicketID   int       `json:"ticket_id" db:"ticket_id"`
	EventDayID int       `json:"event_day_id" db:"event_day_id"`
	UsedAt     time.Time `json:"used_at" db:"used_at"`
	UsedBy     int       `json:"used_by" db:"used_by"`
}

// Validate validates the ticket data
func (t *Ticket) Validate() error {
	if t.TicketCode == "" {
		return errors.New("ticket code is required")
	}

	if len(t.TicketCode) > 32 {
		return errors.New("ticket code must be less than 32 characters")
	}

	if t.QRPayload == "" {
		return errors.New("QR payload is required")
	}

	switch t.Status {
	case TicketValid, TicketUsed, TicketCancelled, TicketRefunded:
	default:
		return errors.New("invalid ticket status")
	}

	if t.IsBundleTicket && t.BundleID == nil {
		return errors.New("bundle ticket missing bundle reference")
	}

	return nil
}

// CanBeScanned returns true if the ticket can be consumed at the door
func (t *Ticket) CanBeScanned() bool {
	return t.Status == TicketValid
}

// CanBeRefunded returns true if the ticket can still be refunded
func (t *Ticket) CanBeRefunded() bool {
	return t.Status == TicketValid
}
