package models

import (
	"errors"
	"strings"
	"time"
)

// AffiliateProgram represents a referral code bound to one event and
// one affiliate user, paying a fixed commission per referred ticket.
type AffiliateProgram struct {
	ID               int       `json:"id" db:"id"`
	EventID          int       `json:"event_id" db:"event_id"`
	AffiliateUserID  int       `json:"affiliate_user_id" db:"affiliate_user_id"`
	ReferralCode     string    `json:"referral_code" db:"referral_code"`
	CommissionCents  int64     `json:"commission_cents" db:"commission_cents"`
	TotalSold        int       `json:"total_sold" db:"total_sold"`
	TotalEarnedCents int64     `json:"total_earned_cents" db:"total_earned_cents"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// AffiliateProgramCreateRequest represents a request to create a program
type AffiliateProgramCreateRequest struct {
	EventID         int    `json:"event_id"`
	AffiliateUserID int    `json:"affiliate_user_id"`
	ReferralCode    string `json:"referral_code"`
	CommissionCents int64  `json:"commission_cents"`
}

// Validate validates the affiliate program create request
func (req *AffiliateProgramCreateRequest) Validate() error {
	code := strings.TrimSpace(req.ReferralCode)
	if code == "" {
		return errors.New("referral code is required")
	}

	if len(code) > 32 {
		return errors.New("referral code must be less than 32 characters")
	}

	if req.CommissionCents <= 0 {
		return errors.New("commission must be greater than 0")
	}

	if req.EventID <= 0 || req.AffiliateUserID <= 0 {
		return errors.New("event and affiliate references are required")
	}

	return nil
}
