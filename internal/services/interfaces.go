package services

import (
	"time"

	"boxoffice/internal/models"
)

// InventoryRepository is the storage contract for ticket types and
// their allocation counters. Implementations must make every counter
// mutation atomic per ticket type: two concurrent calls may never both
// observe the pre-mutation value and both commit.
type InventoryRepository interface {
	CreateTicketType(req *models.TicketTypeCreateRequest) (*models.TicketType, error)
	GetTicketTypeByID(id int) (*models.TicketType, error)
	GetTicketTypesByEvent(eventID int) ([]*models.TicketType, error)
	AllocateToSubpool(ticketTypeID int, kind models.AllocationKind, quantity int) error
	RecordSale(ticketTypeID, quantity int) error
	ReverseSale(ticketTypeID, quantity int) error
	SetActive(ticketTypeID int, active bool) error
}

// TicketRepository is the storage contract for issued tickets, bundle
// purchases and per-day usage. MarkUsed and MarkDayUsed are
// compare-and-swap operations: of N concurrent callers exactly one
// receives true.
type TicketRepository interface {
	CreateTicket(t *models.Ticket) (*models.Ticket, error)
	GetTicketByID(id int) (*models.Ticket, error)
	GetTicketByCode(code string) (*models.Ticket, error)
	GetBundleTicketForDay(code string, eventDayID int) (*models.Ticket, error)
	GetTicketsByPurchaseRef(purchaseRef string) ([]*models.Ticket, error)
	MarkUsed(ticketID, actorID int, at time.Time) (bool, error)
	MarkDayUsed(ticketID, eventDayID, actorID int, at time.Time) (bool, error)
	ForceUse(ticketID, actorID int, at time.Time) error
	UpdateTicketStatus(ticketID int, status models.TicketStatus) error
	GetDayUsage(ticketID int) ([]*models.DayUsage, error)
	CreateBundle(bundle *models.BundlePurchase) (*models.BundlePurchase, error)
	GetBundleByCode(accessCode string) (*models.BundlePurchase, error)
}

// RevenueRepository is the storage contract for transactions, seller
// balances and payouts. Balance mutations are conditional per-seller
// operations; CreatePayout and RefundTransaction pair their balance
// check with the accompanying state change in one atomic step.
type RevenueRepository interface {
	CreateTransaction(t *models.PlatformTransaction) (*models.PlatformTransaction, error)
	GetTransactionByID(id int) (*models.PlatformTransaction, error)
	GetTransactionByPaymentRef(paymentRef string) (*models.PlatformTransaction, error)
	GetTransactionsBySeller(sellerID, limit, offset int) ([]*models.PlatformTransaction, int, error)
	RefundTransaction(transactionID int, refundCents int64, sellerID int, debitCents int64, at time.Time) error
	GetSellerBalance(sellerID int) (*models.SellerBalance, error)
	CreditSeller(sellerID int, amountCents int64) error
	CreatePayout(sellerID int, amountCents int64, bankDetails string) (*models.PayoutRequest, error)
	GetPayoutByID(id int) (*models.PayoutRequest, error)
	CompletePayout(payoutID int) error
	GetPayoutsBySeller(sellerID, limit, offset int) ([]*models.PayoutRequest, error)
}

// AffiliateRepository is the storage contract for referral programs
type AffiliateRepository interface {
	CreateProgram(req *models.AffiliateProgramCreateRequest) (*models.AffiliateProgram, error)
	GetActiveByCode(referralCode string) (*models.AffiliateProgram, error)
	RecordSale(programID int, commissionCents int64) error
	SetActive(programID int, active bool) error
}

// ScanLogRepository is the append-only audit trail contract
type ScanLogRepository interface {
	Append(log *models.ScanLog) error
	Search(filters models.ScanLogFilters) ([]*models.ScanLog, int, error)
	Attendance(eventID int) (*models.AttendanceSummary, error)
}

// StaffRepository is the storage contract for events and role grants
type StaffRepository interface {
	CreateEvent(event *models.Event) (*models.Event, error)
	GetEventByID(id int) (*models.Event, error)
	CreateEventDay(day *models.EventDay) (*models.EventDay, error)
	GetEventDays(eventID int) ([]*models.EventDay, error)
	GetGrant(eventID, userID int) (models.StaffRole, error)
	UpsertGrant(eventID, userID int, role models.StaffRole) error
	DeleteGrant(eventID, userID int) error
}

// IdempotencyRepository is the processed-delivery record contract
type IdempotencyRepository interface {
	Claim(key, scope string) (bool, *int, error)
	SetResult(key string, resultID int) error
	Release(key string) error
}
