package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"boxoffice/internal/config"
	"boxoffice/internal/models"
)

// RevenueService owns the money path: recording confirmed payments as
// three-way splits, crediting seller balances, refunds, payouts and
// affiliate commissions. All amounts are integer cents; fee and
// proportion math goes through decimals and rounds half-up once, at
// the end.
type RevenueService struct {
	revenueRepo     RevenueRepository
	affiliateRepo   AffiliateRepository
	ticketRepo      TicketRepository
	inventoryRepo   InventoryRepository
	idempotencyRepo IdempotencyRepository
	fees            config.FeesConfig
}

// NewRevenueService creates a new revenue service
func NewRevenueService(
	revenueRepo RevenueRepository,
	affiliateRepo AffiliateRepository,
	ticketRepo TicketRepository,
	inventoryRepo InventoryRepository,
	idempotencyRepo IdempotencyRepository,
	fees config.FeesConfig,
) *RevenueService {
	return &RevenueService{
		revenueRepo:     revenueRepo,
		affiliateRepo:   affiliateRepo,
		ticketRepo:      ticketRepo,
		inventoryRepo:   inventoryRepo,
		idempotencyRepo: idempotencyRepo,
		fees:            fees,
	}
}

// PlatformFeeCents computes the platform's cut of a gross amount under
// the provider's fee schedule: flat component plus percentage, rounded
// half-up to whole cents.
func (s *RevenueService) PlatformFeeCents(provider string, grossCents int64) int64 {
	fee := s.fees.Fee(provider)
	pct := decimal.NewFromInt(grossCents).
		Mul(decimal.NewFromFloat(fee.Percent)).
		Div(decimal.NewFromInt(100))
	return fee.FlatCents + pct.Round(0).IntPart()
}

// RecordTransaction records a confirmed payment as an immutable
// three-way split and credits the seller's balance with their share.
// The payment reference is the idempotency key; a redelivered webhook
// returns the original transaction without crediting twice.
func (s *RevenueService) RecordTransaction(req *models.TransactionCreateRequest) (*models.PlatformTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	claimed, _, err := s.idempotencyRepo.Claim("txn:"+req.PaymentRef, "transaction")
	if err != nil {
		return nil, err
	}
	if !claimed {
		txn, err := s.revenueRepo.GetTransactionByPaymentRef(req.PaymentRef)
		if errors.Is(err, models.ErrTransactionNotFound) {
			// The first delivery holds the claim but has not committed
			// its row yet; tell the provider to retry rather than 404
			return nil, fmt.Errorf("%w: payment %s is still being recorded", models.ErrDuplicateEntry, req.PaymentRef)
		}
		return txn, err
	}

	feeCents := s.PlatformFeeCents(req.Provider, req.GrossCents)
	if feeCents > req.GrossCents {
		feeCents = req.GrossCents
	}

	txn, err := s.revenueRepo.CreateTransaction(&models.PlatformTransaction{
		EventID:           req.EventID,
		SellerID:          req.SellerID,
		BuyerID:           req.BuyerID,
		TicketID:          req.TicketID,
		PaymentRef:        req.PaymentRef,
		Provider:          req.Provider,
		GrossCents:        req.GrossCents,
		PlatformFeeCents:  feeCents,
		SellerPayoutCents: req.GrossCents - feeCents,
		Status:            models.TransactionCompleted,
	})
	if err != nil {
		s.idempotencyRepo.Release("txn:" + req.PaymentRef)
		if errors.Is(err, models.ErrDuplicateEntry) {
			return s.revenueRepo.GetTransactionByPaymentRef(req.PaymentRef)
		}
		return nil, err
	}

	if err := s.revenueRepo.CreditSeller(txn.SellerID, txn.SellerPayoutCents); err != nil {
		return nil, fmt.Errorf("failed to credit seller %d for transaction %d: %w", txn.SellerID, txn.ID, err)
	}

	s.idempotencyRepo.SetResult("txn:"+req.PaymentRef, txn.ID)
	return txn, nil
}

// ProcessRefund refunds part or all of a completed transaction. The
// seller is debited their proportional share of the refund; a full
// refund additionally marks the attached ticket refunded and returns
// its unit to inventory. A transaction refunds at most once.
func (s *RevenueService) ProcessRefund(transactionID int, refundCents int64) (*models.PlatformTransaction, error) {
	txn, err := s.revenueRepo.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}

	if err := txn.CanRefund(refundCents); err != nil {
		if errors.Is(err, models.ErrAlreadyRefunded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	// The status transition and the seller's debit commit together or
	// not at all; a drained balance leaves the transaction completed so
	// the refund can be retried once funds return.
	sellerShare := proportionalShare(refundCents, txn.SellerPayoutCents, txn.GrossCents)
	if err := s.revenueRepo.RefundTransaction(transactionID, refundCents, txn.SellerID, sellerShare, time.Now()); err != nil {
		return nil, err
	}

	if refundCents == txn.GrossCents && txn.TicketID != nil {
		ticket, err := s.ticketRepo.GetTicketByID(*txn.TicketID)
		if err == nil && ticket.CanBeRefunded() {
			if err := s.ticketRepo.UpdateTicketStatus(ticket.ID, models.TicketRefunded); err != nil {
				return nil, err
			}
			if err := s.inventoryRepo.ReverseSale(ticket.TicketTypeID, 1); err != nil {
				return nil, err
			}
		}
	}

	return s.revenueRepo.GetTransactionByID(transactionID)
}

// GetTransactionByID retrieves a transaction
func (s *RevenueService) GetTransactionByID(id int) (*models.PlatformTransaction, error) {
	return s.revenueRepo.GetTransactionByID(id)
}

// GetTransactionsBySeller returns a page of the seller's transactions,
// newest first, with the total count
func (s *RevenueService) GetTransactionsBySeller(sellerID, limit, offset int) ([]*models.PlatformTransaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.revenueRepo.GetTransactionsBySeller(sellerID, limit, offset)
}

// GetSellerBalance retrieves the seller's running ledger
func (s *RevenueService) GetSellerBalance(sellerID int) (*models.SellerBalance, error) {
	return s.revenueRepo.GetSellerBalance(sellerID)
}

// RequestPayout reserves amountCents of the seller's available balance
// into a pending payout. The check and the reservation are one atomic
// step; two concurrent requests can never both draw from the same
// cents.
func (s *RevenueService) RequestPayout(sellerID int, req *models.PayoutCreateRequest) (*models.PayoutRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return s.revenueRepo.CreatePayout(sellerID, req.AmountCents, req.BankDetails)
}

// CompletePayout finalizes a pending payout after the bank transfer,
// moving the amount from pending into the seller's lifetime payout
// total
func (s *RevenueService) CompletePayout(payoutID int) (*models.PayoutRequest, error) {
	if err := s.revenueRepo.CompletePayout(payoutID); err != nil {
		return nil, err
	}
	return s.revenueRepo.GetPayoutByID(payoutID)
}

// GetPayoutsBySeller returns a page of the seller's payout requests
func (s *RevenueService) GetPayoutsBySeller(sellerID, limit, offset int) ([]*models.PayoutRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.revenueRepo.GetPayoutsBySeller(sellerID, limit, offset)
}

// CreateAffiliateProgram registers a referral code for an event
func (s *RevenueService) CreateAffiliateProgram(req *models.AffiliateProgramCreateRequest) (*models.AffiliateProgram, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return s.affiliateRepo.CreateProgram(req)
}

// TrackAffiliateSale attributes a referred sale: the program's counters
// advance and the affiliate's balance is credited the fixed commission.
// The commission is its own ledger entry next to the platform fee and
// the seller payout, never deducted from either, so the total disbursed
// for a referred sale exceeds the gross by the commission.
func (s *RevenueService) TrackAffiliateSale(referralCode string, txn *models.PlatformTransaction) (*models.AffiliateProgram, error) {
	program, err := s.affiliateRepo.GetActiveByCode(referralCode)
	if err != nil {
		return nil, err
	}
	if program.EventID != txn.EventID {
		return nil, models.ErrInvalidReferral
	}

	commission := program.CommissionCents
	if err := s.revenueRepo.CreditSeller(program.AffiliateUserID, commission); err != nil {
		return nil, fmt.Errorf("failed to credit affiliate %d: %w", program.AffiliateUserID, err)
	}
	if err := s.affiliateRepo.RecordSale(program.ID, commission); err != nil {
		return nil, err
	}

	program.TotalSold++
	program.TotalEarnedCents += commission
	return program, nil
}

// proportionalShare computes round(refund * part / whole) in cents
func proportionalShare(refundCents, partCents, wholeCents int64) int64 {
	if wholeCents == 0 {
		return 0
	}
	return decimal.NewFromInt(refundCents).
		Mul(decimal.NewFromInt(partCents)).
		Div(decimal.NewFromInt(wholeCents)).
		Round(0).
		IntPart()
}
