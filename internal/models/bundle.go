package models

import (
	"errors"
	"time"
)

// BundleDay is one included day of a bundle definition, in order
type BundleDay struct {
	EventDayID   int `json:"event_day_id" db:"event_day_id"`
	TicketTypeID int `json:"ticket_type_id" db:"ticket_type_id"`
}

// BundlePurchase represents a single payment yielding one master
// ticket identity mapped to one day-scoped Ticket per included day.
// Every generated ticket carries the same access code and QR payload.
type BundlePurchase struct {
	ID          int         `json:"id" db:"id"`
	EventID     int         `json:"event_id" db:"event_id"`
	BuyerID     int         `json:"buyer_id" db:"buyer_id"`
	PurchaseRef string      `json:"purchase_ref" db:"purchase_ref"`
	AccessCode  string      `json:"access_code" db:"access_code"`
	QRPayload   string      `json:"qr_payload" db:"qr_payload"`
	TotalCents  int64       `json:"total_cents" db:"total_cents"`
	Days        []BundleDay `json:"days,omitempty"`
	TicketIDs   []int       `json:"ticket_ids,omitempty"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// BundleIssueRequest represents a request to issue a bundle purchase
type BundleIssueRequest struct {
	EventID     int         `json:"event_id"`
	BuyerID     int         `json:"buyer_id"`
	PurchaseRef string      `json:"purchase_ref"`
	Days        []BundleDay `json:"days"`
}

// Validate validates the bundle issue request
func (req *BundleIssueRequest) Validate() error {
	if req.PurchaseRef == "" {
		return errors.New("purchase reference is required")
	}

	if len(req.Days) == 0 {
		return errors.New("bundle must include at least one day")
	}

	seen := make(map[int]bool, len(req.Days))
	for _, day := range req.Days {
		if day.EventDayID <= 0 || day.TicketTypeID <= 0 {
			return errors.New("bundle day references are required")
		}
		if seen[day.EventDayID] {
			return errors.New("bundle includes the same day twice")
		}
		seen[day.EventDayID] = true
	}

	return nil
}
