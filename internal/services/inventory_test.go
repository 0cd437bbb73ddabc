package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/models"
)

func TestCreateTicketType(t *testing.T) {
	env := newTestEnv()
	event, _ := env.seedEvent(t, 1, 1)

	tests := []struct {
		name    string
		req     *models.TicketTypeCreateRequest
		wantErr bool
	}{
		{
			name: "valid ticket type",
			req: &models.TicketTypeCreateRequest{
				EventID:    event.ID,
				Name:       "VIP",
				Category:   models.CategoryVIP,
				PriceCents: 10000,
				Quantity:   50,
			},
			wantErr: false,
		},
		{
			name: "missing name",
			req: &models.TicketTypeCreateRequest{
				EventID:    event.ID,
				Category:   models.CategoryGeneral,
				PriceCents: 5000,
				Quantity:   50,
			},
			wantErr: true,
		},
		{
			name: "zero quantity",
			req: &models.TicketTypeCreateRequest{
				EventID:    event.ID,
				Name:       "Regular",
				Category:   models.CategoryGeneral,
				PriceCents: 5000,
				Quantity:   0,
			},
			wantErr: true,
		},
		{
			name: "unknown event",
			req: &models.TicketTypeCreateRequest{
				EventID:    9999,
				Name:       "Regular",
				Category:   models.CategoryGeneral,
				PriceCents: 5000,
				Quantity:   50,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := env.inventory.CreateTicketType(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.Quantity, created.AllocatedQuantity)
			assert.Equal(t, tt.req.Quantity, created.AvailableQuantity)
			assert.Zero(t, created.SoldCount)
			assert.True(t, created.IsActive)
			assert.NoError(t, created.CheckInvariant())
		})
	}
}

func TestAllocateToSubpool(t *testing.T) {
	env := newTestEnv()
	event, _ := env.seedEvent(t, 1, 1)
	tt := env.seedTicketType(t, event.ID, 5000, 100)

	require.NoError(t, env.inventory.AllocateToSubpool(tt.ID, models.AllocationTable, 30))
	require.NoError(t, env.inventory.AllocateToSubpool(tt.ID, models.AllocationBundle, 20))

	got := env.requireInventoryInvariant(t, tt.ID)
	assert.Equal(t, 50, got.AvailableQuantity)
	assert.Equal(t, 30, got.TableAllocations)
	assert.Equal(t, 20, got.BundleAllocations)

	// More than remains individually sellable
	err := env.inventory.AllocateToSubpool(tt.ID, models.AllocationTable, 51)
	assert.ErrorIs(t, err, models.ErrInsufficientInventory)

	// Nothing moved on the failed allocation
	got = env.requireInventoryInvariant(t, tt.ID)
	assert.Equal(t, 50, got.AvailableQuantity)
	assert.Equal(t, 30, got.TableAllocations)
}

func TestRecordSaleCountersPartition(t *testing.T) {
	env := newTestEnv()
	event, _ := env.seedEvent(t, 1, 1)
	tt := env.seedTicketType(t, event.ID, 5000, 10)

	require.NoError(t, env.inventory.RecordSale(tt.ID, 7))

	got := env.requireInventoryInvariant(t, tt.ID)
	assert.Equal(t, 3, got.AvailableQuantity)
	assert.Equal(t, 7, got.SoldCount)

	// Selling past the remainder fails and changes nothing
	err := env.inventory.RecordSale(tt.ID, 4)
	assert.ErrorIs(t, err, models.ErrSoldOut)

	got = env.requireInventoryInvariant(t, tt.ID)
	assert.Equal(t, 3, got.AvailableQuantity)
	assert.Equal(t, 7, got.SoldCount)

	// Refund returns units to the sellable pool
	require.NoError(t, env.inventory.ReverseSale(tt.ID, 2))
	got = env.requireInventoryInvariant(t, tt.ID)
	assert.Equal(t, 5, got.AvailableQuantity)
	assert.Equal(t, 5, got.SoldCount)
}

func TestRecordSaleConcurrentNeverOversells(t *testing.T) {
	env := newTestEnv()
	event, _ := env.seedEvent(t, 1, 1)
	tt := env.seedTicketType(t, event.ID, 5000, 10)

	const buyers = 50
	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- env.inventory.RecordSale(tt.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrSoldOut)
		}
	}

	assert.Equal(t, 10, succeeded)
	got := env.requireInventoryInvariant(t, tt.ID)
	assert.Equal(t, 0, got.AvailableQuantity)
	assert.Equal(t, 10, got.SoldCount)
}

func TestCurrentPriceCentsEarlyBird(t *testing.T) {
	env := newTestEnv()
	event, _ := env.seedEvent(t, 1, 1)

	created, err := env.inventory.CreateTicketType(&models.TicketTypeCreateRequest{
		EventID:          event.ID,
		Name:             "Early",
		Category:         models.CategoryEarlyBird,
		PriceCents:       8000,
		HasEarlyBird:     true,
		EarlyBirdCents:   6000,
		EarlyBirdEndDate: time.Now().Add(time.Hour),
		Quantity:         100,
	})
	require.NoError(t, err)

	price, err := env.inventory.CurrentPriceCents(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), price)

	// After the window closes the base price applies
	assert.Equal(t, int64(8000), created.CurrentPriceCents(time.Now().Add(2*time.Hour)))
}

func TestDeactivateTicketType(t *testing.T) {
	env := newTestEnv()
	event, _ := env.seedEvent(t, 1, 1)
	tt := env.seedTicketType(t, event.ID, 5000, 10)

	require.NoError(t, env.inventory.DeactivateTicketType(tt.ID))

	got, err := env.inventory.GetTicketTypeByID(tt.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Issuance refuses inactive types
	_, err = env.issuer.IssueIndividualTickets(&IssueRequest{
		EventID:      event.ID,
		TicketTypeID: tt.ID,
		Quantity:     1,
		PurchaseRef:  "PUR-INACTIVE-1",
	})
	assert.ErrorIs(t, err, models.ErrTicketTypeInactive)
}
