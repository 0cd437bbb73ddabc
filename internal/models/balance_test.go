package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSellerBalanceCheckInvariant(t *testing.T) {
	ok := SellerBalance{
		AvailableCents: 4700,
		PendingCents:   5000,
		EarningsCents:  9700,
		PayoutsCents:   0,
	}
	assert.NoError(t, ok.CheckInvariant())

	afterPayout := SellerBalance{
		AvailableCents: 4700,
		PendingCents:   0,
		EarningsCents:  9700,
		PayoutsCents:   5000,
	}
	assert.NoError(t, afterPayout.CheckInvariant())

	negative := SellerBalance{AvailableCents: -1}
	assert.Error(t, negative.CheckInvariant())

	overdrawn := SellerBalance{
		AvailableCents: 6000,
		EarningsCents:  5000,
	}
	assert.Error(t, overdrawn.CheckInvariant())
}

func TestPayoutCreateRequestValidate(t *testing.T) {
	assert.NoError(t, (&PayoutCreateRequest{AmountCents: 1000, BankDetails: "KCB 123"}).Validate())
	assert.Error(t, (&PayoutCreateRequest{AmountCents: 999, BankDetails: "KCB 123"}).Validate())
	assert.Error(t, (&PayoutCreateRequest{AmountCents: 1000}).Validate())
}

func TestCanRefund(t *testing.T) {
	txn := PlatformTransaction{
		GrossCents: 5000,
		Status:     TransactionCompleted,
	}

	assert.NoError(t, txn.CanRefund(5000))
	assert.NoError(t, txn.CanRefund(1))
	assert.Error(t, txn.CanRefund(0))
	assert.Error(t, txn.CanRefund(5001))

	txn.Status = TransactionRefunded
	assert.ErrorIs(t, txn.CanRefund(5000), ErrAlreadyRefunded)
}
