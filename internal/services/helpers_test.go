package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boxoffice/internal/config"
	"boxoffice/internal/models"
)

// testEnv wires every service against the in-memory fakes
type testEnv struct {
	inventoryRepo   *fakeInventoryRepo
	ticketRepo      *fakeTicketRepo
	revenueRepo     *fakeRevenueRepo
	affiliateRepo   *fakeAffiliateRepo
	scanLogRepo     *fakeScanLogRepo
	staffRepo       *fakeStaffRepo
	idempotencyRepo *fakeIdempotencyRepo

	inventory *InventoryService
	issuer    *IssuerService
	checkin   *CheckinService
	revenue   *RevenueService
	access    *AccessService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		inventoryRepo:   newFakeInventoryRepo(),
		ticketRepo:      newFakeTicketRepo(),
		revenueRepo:     newFakeRevenueRepo(),
		affiliateRepo:   newFakeAffiliateRepo(),
		scanLogRepo:     newFakeScanLogRepo(),
		staffRepo:       newFakeStaffRepo(),
		idempotencyRepo: newFakeIdempotencyRepo(),
	}

	fees := config.FeesConfig{
		DefaultPercent: 3.0,
		Providers:      map[string]config.ProviderFee{},
	}

	env.inventory = NewInventoryService(env.inventoryRepo, env.staffRepo)
	env.issuer = NewIssuerService(env.inventoryRepo, env.ticketRepo, env.staffRepo, env.idempotencyRepo, "https://tickets.test", 10)
	env.checkin = NewCheckinService(env.ticketRepo, env.scanLogRepo, env.staffRepo)
	env.revenue = NewRevenueService(env.revenueRepo, env.affiliateRepo, env.ticketRepo, env.inventoryRepo, env.idempotencyRepo, fees)
	env.access = NewAccessService(env.staffRepo)

	return env
}

// seedEvent creates an active event with the given number of days and
// returns the event plus its days in order
func (env *testEnv) seedEvent(t *testing.T, organizerID, numDays int) (*models.Event, []*models.EventDay) {
	t.Helper()

	start := time.Now().Add(24 * time.Hour)
	event, err := env.staffRepo.CreateEvent(&models.Event{
		Title:       "Nairobi Jazz Festival",
		OrganizerID: organizerID,
		StartDate:   start,
		EndDate:     start.Add(time.Duration(numDays) * 24 * time.Hour),
		IsActive:    true,
	})
	require.NoError(t, err)

	days := make([]*models.EventDay, 0, numDays)
	for i := 0; i < numDays; i++ {
		day, err := env.staffRepo.CreateEventDay(&models.EventDay{
			EventID: event.ID,
			Date:    start.Add(time.Duration(i) * 24 * time.Hour),
		})
		require.NoError(t, err)
		days = append(days, day)
	}

	return event, days
}

// seedTicketType creates an active ticket type with the given quantity
func (env *testEnv) seedTicketType(t *testing.T, eventID int, priceCents int64, quantity int) *models.TicketType {
	t.Helper()

	tt, err := env.inventoryRepo.CreateTicketType(&models.TicketTypeCreateRequest{
		EventID:    eventID,
		Name:       "Regular",
		Category:   models.CategoryGeneral,
		PriceCents: priceCents,
		Quantity:   quantity,
	})
	require.NoError(t, err)
	return tt
}

// requireInventoryInvariant asserts the counter partition still holds
func (env *testEnv) requireInventoryInvariant(t *testing.T, ticketTypeID int) *models.TicketType {
	t.Helper()

	tt, err := env.inventoryRepo.GetTicketTypeByID(ticketTypeID)
	require.NoError(t, err)
	require.NoError(t, tt.CheckInvariant())
	return tt
}
