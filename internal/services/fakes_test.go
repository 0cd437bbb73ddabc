package services

import (
	"strings"
	"sync"
	"time"

	"boxoffice/internal/models"
)

// In-memory repository fakes. Each fake guards its state with a mutex
// and reproduces the conditional-update semantics of the SQL layer, so
// the concurrency tests exercise the same decide-and-commit step the
// real repositories provide.

type fakeInventoryRepo struct {
	mu     sync.Mutex
	nextID int
	types  map[int]*models.TicketType
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{nextID: 1, types: make(map[int]*models.TicketType)}
}

func (r *fakeInventoryRepo) CreateTicketType(req *models.TicketTypeCreateRequest) (*models.TicketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt := &models.TicketType{
		ID:                r.nextID,
		EventID:           req.EventID,
		EventDayID:        req.EventDayID,
		Name:              req.Name,
		Category:          req.Category,
		PriceCents:        req.PriceCents,
		HasEarlyBird:      req.HasEarlyBird,
		EarlyBirdCents:    req.EarlyBirdCents,
		EarlyBirdEndDate:  req.EarlyBirdEndDate,
		AllocatedQuantity: req.Quantity,
		AvailableQuantity: req.Quantity,
		IsActive:          true,
		CreatedAt:         time.Now(),
	}
	r.nextID++
	r.types[tt.ID] = tt

	copied := *tt
	return &copied, nil
}

func (r *fakeInventoryRepo) GetTicketTypeByID(id int) (*models.TicketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.types[id]
	if !ok {
		return nil, models.ErrTicketTypeNotFound
	}
	copied := *tt
	return &copied, nil
}

func (r *fakeInventoryRepo) GetTicketTypesByEvent(eventID int) ([]*models.TicketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.TicketType
	for _, tt := range r.types {
		if tt.EventID == eventID {
			copied := *tt
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) AllocateToSubpool(ticketTypeID int, kind models.AllocationKind, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.types[ticketTypeID]
	if !ok {
		return models.ErrTicketTypeNotFound
	}
	if tt.AvailableQuantity < quantity {
		return models.ErrInsufficientInventory
	}
	tt.AvailableQuantity -= quantity
	switch kind {
	case models.AllocationTable:
		tt.TableAllocations += quantity
	case models.AllocationBundle:
		tt.BundleAllocations += quantity
	}
	return nil
}

func (r *fakeInventoryRepo) RecordSale(ticketTypeID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.types[ticketTypeID]
	if !ok {
		return models.ErrTicketTypeNotFound
	}
	if tt.AvailableQuantity < quantity {
		return models.ErrSoldOut
	}
	tt.AvailableQuantity -= quantity
	tt.SoldCount += quantity
	return nil
}

func (r *fakeInventoryRepo) ReverseSale(ticketTypeID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.types[ticketTypeID]
	if !ok {
		return models.ErrTicketTypeNotFound
	}
	if tt.SoldCount < quantity {
		return models.ErrInsufficientInventory
	}
	tt.SoldCount -= quantity
	tt.AvailableQuantity += quantity
	return nil
}

func (r *fakeInventoryRepo) SetActive(ticketTypeID int, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.types[ticketTypeID]
	if !ok {
		return models.ErrTicketTypeNotFound
	}
	tt.IsActive = active
	return nil
}

type fakeTicketRepo struct {
	mu         sync.Mutex
	nextID     int
	tickets    map[int]*models.Ticket
	bundles    map[int]*models.BundlePurchase
	dayUsage   map[int]map[int]*models.DayUsage // ticketID -> eventDayID
	nextBundle int
	nextUsage  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		nextID:     1,
		nextBundle: 1,
		nextUsage:  1,
		tickets:    make(map[int]*models.Ticket),
		bundles:    make(map[int]*models.BundlePurchase),
		dayUsage:   make(map[int]map[int]*models.DayUsage),
	}
}

func (r *fakeTicketRepo) CreateTicket(t *models.Ticket) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tickets {
		if existing.EventID == t.EventID && existing.TicketCode == t.TicketCode &&
			intPtrEqual(existing.EventDayID, t.EventDayID) {
			return nil, models.ErrDuplicateEntry
		}
	}

	copied := *t
	copied.ID = r.nextID
	copied.CreatedAt = time.Now()
	r.nextID++
	r.tickets[copied.ID] = &copied

	out := copied
	return &out, nil
}

func (r *fakeTicketRepo) GetTicketByID(id int) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) GetTicketByCode(code string) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tickets {
		if t.TicketCode == code && !t.IsBundleTicket {
			copied := *t
			return &copied, nil
		}
	}
	return nil, models.ErrTicketNotFound
}

func (r *fakeTicketRepo) GetBundleTicketForDay(code string, eventDayID int) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tickets {
		if t.IsBundleTicket && t.TicketCode == code && t.EventDayID != nil && *t.EventDayID == eventDayID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, models.ErrTicketNotFound
}

func (r *fakeTicketRepo) GetTicketsByPurchaseRef(purchaseRef string) ([]*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Ticket
	for id := 1; id < r.nextID; id++ {
		if t, ok := r.tickets[id]; ok && t.PurchaseRef == purchaseRef {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) MarkUsed(ticketID, actorID int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return false, models.ErrTicketNotFound
	}
	if t.Status != models.TicketValid || t.Scanned {
		return false, nil
	}
	t.Status = models.TicketUsed
	t.Scanned = true
	t.ScannedAt = &at
	t.ScannedBy = &actorID
	return true, nil
}

func (r *fakeTicketRepo) MarkDayUsed(ticketID, eventDayID, actorID int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return false, models.ErrTicketNotFound
	}
	if t.Status == models.TicketCancelled || t.Status == models.TicketRefunded {
		return false, nil
	}

	if r.dayUsage[ticketID] == nil {
		r.dayUsage[ticketID] = make(map[int]*models.DayUsage)
	}
	if _, used := r.dayUsage[ticketID][eventDayID]; used {
		return false, nil
	}
	r.dayUsage[ticketID][eventDayID] = &models.DayUsage{
		ID:         r.nextUsage,
		TicketID:   ticketID,
		EventDayID: eventDayID,
		UsedAt:     at,
		UsedBy:     actorID,
	}
	r.nextUsage++

	t.Status = models.TicketUsed
	t.Scanned = true
	t.ScannedAt = &at
	t.ScannedBy = &actorID
	return true, nil
}

func (r *fakeTicketRepo) ForceUse(ticketID, actorID int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return models.ErrTicketNotFound
	}
	t.Status = models.TicketUsed
	t.Scanned = true
	t.ScannedAt = &at
	t.ScannedBy = &actorID
	return nil
}

func (r *fakeTicketRepo) UpdateTicketStatus(ticketID int, status models.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return models.ErrTicketNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTicketRepo) GetDayUsage(ticketID int) ([]*models.DayUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.DayUsage
	for _, u := range r.dayUsage[ticketID] {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTicketRepo) CreateBundle(bundle *models.BundlePurchase) (*models.BundlePurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.bundles {
		if existing.AccessCode == bundle.AccessCode {
			return nil, models.ErrDuplicateEntry
		}
	}

	copied := *bundle
	copied.ID = r.nextBundle
	copied.CreatedAt = time.Now()
	r.nextBundle++
	r.bundles[copied.ID] = &copied

	out := copied
	return &out, nil
}

func (r *fakeTicketRepo) GetBundleByCode(accessCode string) (*models.BundlePurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bundles {
		if b.AccessCode == accessCode {
			copied := *b
			for _, t := range r.tickets {
				if t.BundleID != nil && *t.BundleID == b.ID {
					copied.TicketIDs = append(copied.TicketIDs, t.ID)
				}
			}
			return &copied, nil
		}
	}
	return nil, models.ErrBundleNotFound
}

type fakeRevenueRepo struct {
	mu         sync.Mutex
	nextTxn    int
	nextPayout int
	txns       map[int]*models.PlatformTransaction
	balances   map[int]*models.SellerBalance
	payouts    map[int]*models.PayoutRequest
}

func newFakeRevenueRepo() *fakeRevenueRepo {
	return &fakeRevenueRepo{
		nextTxn:    1,
		nextPayout: 1,
		txns:       make(map[int]*models.PlatformTransaction),
		balances:   make(map[int]*models.SellerBalance),
		payouts:    make(map[int]*models.PayoutRequest),
	}
}

func (r *fakeRevenueRepo) CreateTransaction(t *models.PlatformTransaction) (*models.PlatformTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.txns {
		if existing.PaymentRef == t.PaymentRef {
			return nil, models.ErrDuplicateEntry
		}
	}

	copied := *t
	copied.ID = r.nextTxn
	copied.CreatedAt = time.Now()
	r.nextTxn++
	r.txns[copied.ID] = &copied

	out := copied
	return &out, nil
}

func (r *fakeRevenueRepo) GetTransactionByID(id int) (*models.PlatformTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txns[id]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeRevenueRepo) GetTransactionByPaymentRef(paymentRef string) (*models.PlatformTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.txns {
		if t.PaymentRef == paymentRef {
			copied := *t
			return &copied, nil
		}
	}
	return nil, models.ErrTransactionNotFound
}

func (r *fakeRevenueRepo) GetTransactionsBySeller(sellerID, limit, offset int) ([]*models.PlatformTransaction, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*models.PlatformTransaction
	for id := r.nextTxn - 1; id >= 1; id-- {
		if t, ok := r.txns[id]; ok && t.SellerID == sellerID {
			copied := *t
			all = append(all, &copied)
		}
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeRevenueRepo) RefundTransaction(transactionID int, refundCents int64, sellerID int, debitCents int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txns[transactionID]
	if !ok {
		return models.ErrTransactionNotFound
	}
	if t.Status != models.TransactionCompleted {
		return models.ErrAlreadyRefunded
	}

	// Both legs commit together or neither does
	var b *models.SellerBalance
	if debitCents > 0 {
		b, ok = r.balances[sellerID]
		if !ok {
			return models.ErrSellerNotFound
		}
		if b.AvailableCents < debitCents {
			return models.ErrInsufficientBalance
		}
	}

	t.Status = models.TransactionRefunded
	t.RefundCents = &refundCents
	t.RefundedAt = &at
	if debitCents > 0 {
		b.AvailableCents -= debitCents
		b.EarningsCents -= debitCents
		b.UpdatedAt = at
	}
	return nil
}

func (r *fakeRevenueRepo) GetSellerBalance(sellerID int) (*models.SellerBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[sellerID]
	if !ok {
		return nil, models.ErrSellerNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRevenueRepo) CreditSeller(sellerID int, amountCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[sellerID]
	if !ok {
		b = &models.SellerBalance{SellerID: sellerID}
		r.balances[sellerID] = b
	}
	b.AvailableCents += amountCents
	b.EarningsCents += amountCents
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRevenueRepo) CreatePayout(sellerID int, amountCents int64, bankDetails string) (*models.PayoutRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[sellerID]
	if !ok || b.AvailableCents < amountCents {
		return nil, models.ErrInsufficientBalance
	}
	b.AvailableCents -= amountCents
	b.PendingCents += amountCents

	p := &models.PayoutRequest{
		ID:          r.nextPayout,
		SellerID:    sellerID,
		AmountCents: amountCents,
		BankDetails: bankDetails,
		Status:      models.PayoutPending,
		RequestedAt: time.Now(),
	}
	r.nextPayout++
	r.payouts[p.ID] = p

	copied := *p
	return &copied, nil
}

func (r *fakeRevenueRepo) GetPayoutByID(id int) (*models.PayoutRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payouts[id]
	if !ok {
		return nil, models.ErrPayoutNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeRevenueRepo) CompletePayout(payoutID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payouts[payoutID]
	if !ok {
		return models.ErrPayoutNotFound
	}
	if p.Status != models.PayoutPending {
		return models.ErrPayoutNotPending
	}

	now := time.Now()
	p.Status = models.PayoutCompleted
	p.CompletedAt = &now

	b := r.balances[p.SellerID]
	b.PendingCents -= p.AmountCents
	b.PayoutsCents += p.AmountCents
	return nil
}

func (r *fakeRevenueRepo) GetPayoutsBySeller(sellerID, limit, offset int) ([]*models.PayoutRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.PayoutRequest
	for id := r.nextPayout - 1; id >= 1; id-- {
		if p, ok := r.payouts[id]; ok && p.SellerID == sellerID {
			copied := *p
			out = append(out, &copied)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

type fakeAffiliateRepo struct {
	mu       sync.Mutex
	nextID   int
	programs map[int]*models.AffiliateProgram
}

func newFakeAffiliateRepo() *fakeAffiliateRepo {
	return &fakeAffiliateRepo{nextID: 1, programs: make(map[int]*models.AffiliateProgram)}
}

func (r *fakeAffiliateRepo) CreateProgram(req *models.AffiliateProgramCreateRequest) (*models.AffiliateProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.programs {
		if p.ReferralCode == req.ReferralCode {
			return nil, models.ErrDuplicateEntry
		}
	}

	p := &models.AffiliateProgram{
		ID:              r.nextID,
		EventID:         req.EventID,
		AffiliateUserID: req.AffiliateUserID,
		ReferralCode:    req.ReferralCode,
		CommissionCents: req.CommissionCents,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}
	r.nextID++
	r.programs[p.ID] = p

	copied := *p
	return &copied, nil
}

func (r *fakeAffiliateRepo) GetActiveByCode(referralCode string) (*models.AffiliateProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.programs {
		if strings.EqualFold(p.ReferralCode, referralCode) && p.IsActive {
			copied := *p
			return &copied, nil
		}
	}
	return nil, models.ErrInvalidReferral
}

func (r *fakeAffiliateRepo) RecordSale(programID int, commissionCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.programs[programID]
	if !ok {
		return models.ErrInvalidReferral
	}
	p.TotalSold++
	p.TotalEarnedCents += commissionCents
	return nil
}

func (r *fakeAffiliateRepo) SetActive(programID int, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.programs[programID]
	if !ok {
		return models.ErrInvalidReferral
	}
	p.IsActive = active
	return nil
}

type fakeScanLogRepo struct {
	mu     sync.Mutex
	nextID int
	logs   []*models.ScanLog
}

func newFakeScanLogRepo() *fakeScanLogRepo {
	return &fakeScanLogRepo{nextID: 1}
}

func (r *fakeScanLogRepo) Append(log *models.ScanLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *log
	copied.ID = r.nextID
	r.nextID++
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *fakeScanLogRepo) Search(filters models.ScanLogFilters) ([]*models.ScanLog, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.ScanLog
	for _, log := range r.logs {
		if filters.EventID != 0 && log.EventID != filters.EventID {
			continue
		}
		if filters.EventDayID != 0 && (log.EventDayID == nil || *log.EventDayID != filters.EventDayID) {
			continue
		}
		if filters.Result != "" && log.Result != filters.Result {
			continue
		}
		copied := *log
		matched = append(matched, &copied)
	}

	total := len(matched)
	if filters.Offset >= total {
		return nil, total, nil
	}
	end := filters.Offset + filters.Limit
	if filters.Limit <= 0 || end > total {
		end = total
	}
	return matched[filters.Offset:end], total, nil
}

func (r *fakeScanLogRepo) Attendance(eventID int) (*models.AttendanceSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &models.AttendanceSummary{EventID: eventID}
	for _, log := range r.logs {
		if log.EventID != eventID {
			continue
		}
		switch log.Result {
		case models.ScanValid:
			summary.Valid++
		case models.ScanAlreadyUsed:
			summary.AlreadyUsed++
		case models.ScanInvalid:
			summary.Invalid++
		}
		if log.Method == models.MethodOverride {
			summary.Overrides++
		}
	}
	return summary, nil
}

type fakeStaffRepo struct {
	mu        sync.Mutex
	nextEvent int
	nextDay   int
	events    map[int]*models.Event
	days      map[int][]*models.EventDay
	grants    map[[2]int]models.StaffRole
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{
		nextEvent: 1,
		nextDay:   1,
		events:    make(map[int]*models.Event),
		days:      make(map[int][]*models.EventDay),
		grants:    make(map[[2]int]models.StaffRole),
	}
}

func (r *fakeStaffRepo) CreateEvent(event *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	copied.ID = r.nextEvent
	copied.CreatedAt = time.Now()
	r.nextEvent++
	r.events[copied.ID] = &copied

	out := copied
	return &out, nil
}

func (r *fakeStaffRepo) GetEventByID(id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeStaffRepo) CreateEventDay(day *models.EventDay) (*models.EventDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *day
	copied.ID = r.nextDay
	r.nextDay++
	r.days[copied.EventID] = append(r.days[copied.EventID], &copied)

	out := copied
	return &out, nil
}

func (r *fakeStaffRepo) GetEventDays(eventID int) ([]*models.EventDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.EventDay
	for _, d := range r.days[eventID] {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeStaffRepo) GetGrant(eventID, userID int) (models.StaffRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.grants[[2]int{eventID, userID}]
	if !ok {
		return models.RoleNone, nil
	}
	return role, nil
}

func (r *fakeStaffRepo) UpsertGrant(eventID, userID int, role models.StaffRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[eventID]; !ok {
		return models.ErrEventNotFound
	}
	r.grants[[2]int{eventID, userID}] = role
	return nil
}

func (r *fakeStaffRepo) DeleteGrant(eventID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.grants, [2]int{eventID, userID})
	return nil
}

type fakeIdempotencyRepo struct {
	mu      sync.Mutex
	claims  map[string]*int
	claimed map[string]bool
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{claims: make(map[string]*int), claimed: make(map[string]bool)}
}

func (r *fakeIdempotencyRepo) Claim(key, scope string) (bool, *int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.claimed[key] {
		return false, r.claims[key], nil
	}
	r.claimed[key] = true
	return true, nil, nil
}

func (r *fakeIdempotencyRepo) SetResult(key string, resultID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.claims[key] = &resultID
	return nil
}

func (r *fakeIdempotencyRepo) Release(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.claims[key] == nil {
		delete(r.claimed, key)
	}
	return nil
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
