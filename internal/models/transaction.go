package models

import (
	"errors"
	"time"
)

// TransactionStatus represents the status of a platform transaction
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// PlatformTransaction represents one money movement: the gross buyer
// payment split into platform fee and seller payout. Immutable once
// completed; the refund transition is the only allowed state change.
type PlatformTransaction struct {
	ID                int               `json:"id" db:"id"`
	EventID           int               `json:"event_id" db:"event_id"`
	SellerID          int               `json:"seller_id" db:"seller_id"`
	BuyerID           int               `json:"buyer_id" db:"buyer_id"`
	TicketID          *int              `json:"ticket_id,omitempty" db:"ticket_id"`
	PaymentRef        string            `json:"payment_ref" db:"payment_ref"`
	Provider          string            `json:"provider" db:"provider"`
	GrossCents        int64             `json:"gross_cents" db:"gross_cents"`
	PlatformFeeCents  int64             `json:"platform_fee_cents" db:"platform_fee_cents"`
	SellerPayoutCents int64             `json:"seller_payout_cents" db:"seller_payout_cents"`
	Status            TransactionStatus `json:"status" db:"status"`
	RefundCents       *int64            `json:"refund_cents,omitempty" db:"refund_cents"`
	RefundedAt        *time.Time        `json:"refunded_at,omitempty" db:"refunded_at"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// TransactionCreateRequest represents a request to record a transaction
type TransactionCreateRequest struct {
	EventID    int    `json:"event_id"`
	SellerID   int    `json:"seller_id"`
	BuyerID    int    `json:"buyer_id"`
	TicketID   *int   `json:"ticket_id,omitempty"`
	PaymentRef string `json:"payment_ref"`
	Provider   string `json:"provider"`
	GrossCents int64  `json:"gross_cents"`
}

// Validate validates the transaction create request
func (req *TransactionCreateRequest) Validate() error {
	if req.PaymentRef == "" {
		return errors.New("payment reference is required")
	}

	if req.GrossCents <= 0 {
		return errors.New("gross amount must be greater than 0")
	}

	if req.EventID <= 0 || req.SellerID <= 0 {
		return errors.New("event and seller references are required")
	}

	return nil
}

// IsRefunded returns true if the transaction has been refunded
func (t *PlatformTransaction) IsRefunded() bool {
	return t.Status == TransactionRefunded
}

// CanRefund reports whether refundCents is a legal refund amount
func (t *PlatformTransaction) CanRefund(refundCents int64) error {
	if t.Status != TransactionCompleted {
		return ErrAlreadyRefunded
	}
	if refundCents <= 0 || refundCents > t.GrossCents {
		return errors.New("refund amount out of range")
	}
	return nil
}
