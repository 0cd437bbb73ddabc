package models

import "errors"

// Common errors used throughout the engine
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrTicketTypeNotFound  = errors.New("ticket type not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSellerNotFound      = errors.New("seller balance not found")
	ErrPayoutNotFound      = errors.New("payout request not found")
	ErrBundleNotFound      = errors.New("bundle purchase not found")

	ErrSoldOut               = errors.New("ticket type sold out")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrAlreadyRefunded       = errors.New("transaction already refunded")
	ErrPayoutNotPending      = errors.New("payout request is not pending")
	ErrTicketTypeInactive    = errors.New("ticket type is not active")
	ErrDuplicateEntry        = errors.New("duplicate entry")

	ErrUnauthorized    = errors.New("unauthorized access")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidReferral = errors.New("invalid or inactive referral code")
)

// Kind classifies an error into the failure categories callers branch
// on. Errors outside the taxonomy map to KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindInvalidInput
)

// ErrorKind reports which failure category err belongs to, unwrapping
// as needed.
func ErrorKind(err error) Kind {
	switch {
	case errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrTicketTypeNotFound),
		errors.Is(err, ErrTicketNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrSellerNotFound),
		errors.Is(err, ErrPayoutNotFound),
		errors.Is(err, ErrBundleNotFound):
		return KindNotFound
	case errors.Is(err, ErrSoldOut),
		errors.Is(err, ErrInsufficientInventory),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrAlreadyRefunded),
		errors.Is(err, ErrPayoutNotPending),
		errors.Is(err, ErrTicketTypeInactive),
		errors.Is(err, ErrDuplicateEntry):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidReferral):
		return KindInvalidInput
	default:
		return KindInternal
	}
}
