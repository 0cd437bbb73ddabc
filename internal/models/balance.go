package models

import (
	"errors"
	"time"
)

// SellerBalance represents the running ledger for one seller. Created
// lazily on the seller's first transaction.
type SellerBalance struct {
	SellerID       int       `json:"seller_id" db:"seller_id"`
	AvailableCents int64     `json:"available_cents" db:"available_cents"`
	PendingCents   int64     `json:"pending_cents" db:"pending_cents"`
	EarningsCents  int64     `json:"earnings_cents" db:"earnings_cents"`
	PayoutsCents   int64     `json:"payouts_cents" db:"payouts_cents"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PayoutStatus represents the status of a payout request
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
)

// PayoutRequest represents a seller-initiated withdrawal. Creation
// moves the amount from available to pending; completion moves it from
// pending into the seller's lifetime payout total.
type PayoutRequest struct {
	ID          int          `json:"id" db:"id"`
	SellerID    int          `json:"seller_id" db:"seller_id"`
	AmountCents int64        `json:"amount_cents" db:"amount_cents"`
	BankDetails string       `json:"bank_details" db:"bank_details"`
	Status      PayoutStatus `json:"status" db:"status"`
	RequestedAt time.Time    `json:"requested_at" db:"requested_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
}

// PayoutCreateRequest represents a request to create a payout
type PayoutCreateRequest struct {
	AmountCents int64  `json:"amount_cents"`
	BankDetails string `json:"bank_details"`
}

// Validate validates the payout create request
func (req *PayoutCreateRequest) Validate() error {
	// Minimum payout of $10
	if req.AmountCents < 1000 {
		return errors.New("payout amount must be at least $10")
	}

	if req.BankDetails == "" {
		return errors.New("bank details are required")
	}

	if len(req.BankDetails) > 1000 {
		return errors.New("bank details must be less than 1000 characters")
	}

	return nil
}

// CheckInvariant verifies the balance counters are internally
// consistent: nothing negative, and the spendable total never exceeds
// lifetime earnings net of completed payouts.
func (b *SellerBalance) CheckInvariant() error {
	if b.AvailableCents < 0 {
		return errors.New("available balance is negative")
	}
	if b.PendingCents < 0 {
		return errors.New("pending balance is negative")
	}
	if b.AvailableCents+b.PendingCents > b.EarningsCents-b.PayoutsCents {
		return errors.New("spendable balance exceeds net earnings")
	}
	return nil
}
