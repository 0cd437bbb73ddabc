package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicketTypeCreateRequestValidate(t *testing.T) {
	valid := TicketTypeCreateRequest{
		EventID:    1,
		Name:       "Regular",
		Category:   CategoryGeneral,
		PriceCents: 5000,
		Quantity:   100,
	}

	tests := []struct {
		name    string
		mutate  func(*TicketTypeCreateRequest)
		wantErr bool
	}{
		{"valid", func(r *TicketTypeCreateRequest) {}, false},
		{"empty name", func(r *TicketTypeCreateRequest) { r.Name = "" }, true},
		{"whitespace name", func(r *TicketTypeCreateRequest) { r.Name = "   " }, true},
		{"negative price", func(r *TicketTypeCreateRequest) { r.PriceCents = -1 }, true},
		{"price over cap", func(r *TicketTypeCreateRequest) { r.PriceCents = 1000001 }, true},
		{"zero quantity", func(r *TicketTypeCreateRequest) { r.Quantity = 0 }, true},
		{"quantity over cap", func(r *TicketTypeCreateRequest) { r.Quantity = 100001 }, true},
		{"bad category", func(r *TicketTypeCreateRequest) { r.Category = "mystery" }, true},
		{"early bird without end date", func(r *TicketTypeCreateRequest) {
			r.HasEarlyBird = true
			r.EarlyBirdCents = 4000
		}, true},
		{"early bird complete", func(r *TicketTypeCreateRequest) {
			r.HasEarlyBird = true
			r.EarlyBirdCents = 4000
			r.EarlyBirdEndDate = time.Now().Add(time.Hour)
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTicketTypeCheckInvariant(t *testing.T) {
	tt := TicketType{
		AllocatedQuantity: 100,
		TableAllocations:  20,
		BundleAllocations: 10,
		AvailableQuantity: 50,
		SoldCount:         20,
	}
	assert.NoError(t, tt.CheckInvariant())

	broken := tt
	broken.SoldCount = 25
	assert.Error(t, broken.CheckInvariant())

	negative := tt
	negative.AvailableQuantity = -1
	assert.Error(t, negative.CheckInvariant())
}

func TestCurrentPriceCents(t *testing.T) {
	cutoff := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tt := TicketType{
		PriceCents:       8000,
		HasEarlyBird:     true,
		EarlyBirdCents:   6000,
		EarlyBirdEndDate: cutoff,
	}

	assert.Equal(t, int64(6000), tt.CurrentPriceCents(cutoff.Add(-time.Minute)))
	assert.Equal(t, int64(8000), tt.CurrentPriceCents(cutoff))
	assert.Equal(t, int64(8000), tt.CurrentPriceCents(cutoff.Add(time.Minute)))

	noEarly := TicketType{PriceCents: 8000}
	assert.Equal(t, int64(8000), noEarly.CurrentPriceCents(cutoff.Add(-time.Hour)))
}
