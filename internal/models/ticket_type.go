package models

import (
	"errors"
	"strings"
	"time"
)

// TicketCategory represents the sales category of a ticket type
type TicketCategory string

const (
	CategoryGeneral   TicketCategory = "general"
	CategoryVIP       TicketCategory = "vip"
	CategoryEarlyBird TicketCategory = "early_bird"
)

// AllocationKind identifies a sub-pool that units can be carved out to
type AllocationKind string

const (
	AllocationTable  AllocationKind = "table"
	AllocationBundle AllocationKind = "bundle"
)

// TicketType represents one sellable SKU for an event or event-day.
//
// The unit counters partition the total allocation: every unit is
// either still individually sellable, reserved for tables, reserved
// for bundles, or sold. CheckInvariant verifies the partition.
type TicketType struct {
	ID                int            `json:"id" db:"id"`
	EventID           int            `json:"event_id" db:"event_id"`
	EventDayID        *int           `json:"event_day_id,omitempty" db:"event_day_id"`
	Name              string         `json:"name" db:"name"`
	Category          TicketCategory `json:"category" db:"category"`
	PriceCents        int64          `json:"price_cents" db:"price_cents"`
	HasEarlyBird      bool           `json:"has_early_bird" db:"has_early_bird"`
	EarlyBirdCents    int64          `json:"early_bird_cents" db:"early_bird_cents"`
	EarlyBirdEndDate  time.Time      `json:"early_bird_end_date" db:"early_bird_end_date"`
	AllocatedQuantity int            `json:"allocated_quantity" db:"allocated_quantity"`
	TableAllocations  int            `json:"table_allocations" db:"table_allocations"`
	BundleAllocations int            `json:"bundle_allocations" db:"bundle_allocations"`
	AvailableQuantity int            `json:"available_quantity" db:"available_quantity"`
	SoldCount         int            `json:"sold_count" db:"sold_count"`
	IsActive          bool           `json:"is_active" db:"is_active"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// TicketTypeCreateRequest represents a request to create a ticket type
type TicketTypeCreateRequest struct {
	EventID          int            `json:"event_id"`
	EventDayID       *int           `json:"event_day_id,omitempty"`
	Name             string         `json:"name"`
	Category         TicketCategory `json:"category"`
	PriceCents       int64          `json:"price_cents"`
	HasEarlyBird     bool           `json:"has_early_bird"`
	EarlyBirdCents   int64          `json:"early_bird_cents"`
	EarlyBirdEndDate time.Time      `json:"early_bird_end_date"`
	Quantity         int            `json:"quantity"`
}

// Validate validates ticket type creation data
func (req *TicketTypeCreateRequest) Validate() error {
	if err := validateTicketTypeName(req.Name); err != nil {
		return err
	}

	if err := validateTicketTypePrice(req.PriceCents); err != nil {
		return err
	}

	if err := validateTicketTypeQuantity(req.Quantity); err != nil {
		return err
	}

	switch req.Category {
	case CategoryGeneral, CategoryVIP, CategoryEarlyBird:
	default:
		return errors.New("invalid ticket category")
	}

	if req.HasEarlyBird {
		if err := validateTicketTypePrice(req.EarlyBirdCents); err != nil {
			return err
		}
		if req.EarlyBirdEndDate.IsZero() {
			return errors.New("early bird end date is required")
		}
	}

	return nil
}

// validateTicketTypeName validates a ticket type name
func validateTicketTypeName(name string) error {
	if name == "" {
		return errors.New("ticket type name is required")
	}

	if len(name) > 100 {
		return errors.New("ticket type name must be less than 100 characters")
	}

	if strings.TrimSpace(name) == "" {
		return errors.New("ticket type name cannot be only whitespace")
	}

	return nil
}

// validateTicketTypePrice validates a price in cents
func validateTicketTypePrice(priceCents int64) error {
	if priceCents < 0 {
		return errors.New("ticket price cannot be negative")
	}

	// Maximum price of $10,000 (1,000,000 cents)
	if priceCents > 1000000 {
		return errors.New("ticket price cannot exceed $10,000")
	}

	return nil
}

// validateTicketTypeQuantity validates a ticket type quantity
func validateTicketTypeQuantity(quantity int) error {
	if quantity <= 0 {
		return errors.New("ticket quantity must be greater than 0")
	}

	// Maximum quantity of 100,000 tickets per type
	if quantity > 100000 {
		return errors.New("ticket quantity cannot exceed 100,000")
	}

	return nil
}

// CheckInvariant verifies that the unit counters still partition the
// total allocation. A violation means a mutation escaped the
// repository's transactional paths.
func (tt *TicketType) CheckInvariant() error {
	if tt.AvailableQuantity < 0 {
		return errors.New("available quantity is negative")
	}
	if tt.TableAllocations < 0 || tt.BundleAllocations < 0 || tt.SoldCount < 0 {
		return errors.New("allocation counter is negative")
	}
	sum := tt.TableAllocations + tt.BundleAllocations + tt.AvailableQuantity + tt.SoldCount
	if sum != tt.AllocatedQuantity {
		return errors.New("allocation counters do not sum to allocated quantity")
	}
	return nil
}

// CurrentPriceCents returns the sellable unit price at the given
// moment. The result is frozen onto issued tickets and transactions;
// later ticket type edits never change an already-sold price.
func (tt *TicketType) CurrentPriceCents(now time.Time) int64 {
	if tt.HasEarlyBird && now.Before(tt.EarlyBirdEndDate) {
		return tt.EarlyBirdCents
	}
	return tt.PriceCents
}

// IsSoldOut returns true if no units remain individually sellable
func (tt *TicketType) IsSoldOut() bool {
	return tt.AvailableQuantity <= 0
}

// PriceInCurrency returns the base price in the main currency as a float
func (tt *TicketType) PriceInCurrency() float64 {
	return float64(tt.PriceCents) / 100.0
}
