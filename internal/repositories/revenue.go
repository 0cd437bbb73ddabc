package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// RevenueRepository handles platform transactions, seller balances and
// payout requests. Balance mutations are conditional single-row
// updates; the payout lifecycle uses row-level transactions.
type RevenueRepository struct {
	db *sql.DB
}

// NewRevenueRepository creates a new revenue repository
func NewRevenueRepository(db *sql.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

const transactionColumns = `id, event_id, seller_id, buyer_id, ticket_id, payment_ref,
	provider, gross_cents, platform_fee_cents, seller_payout_cents, status,
	refund_cents, refunded_at, created_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.PlatformTransaction, error) {
	t := &models.PlatformTransaction{}
	var ticketID sql.NullInt64
	var refundCents sql.NullInt64
	var refundedAt sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.SellerID,
		&t.BuyerID,
		&ticketID,
		&t.PaymentRef,
		&t.Provider,
		&t.GrossCents,
		&t.PlatformFeeCents,
		&t.SellerPayoutCents,
		&t.Status,
		&refundCents,
		&refundedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ticketID.Valid {
		v := int(ticketID.Int64)
		t.TicketID = &v
	}
	if refundCents.Valid {
		t.RefundCents = &refundCents.Int64
	}
	if refundedAt.Valid {
		t.RefundedAt = &refundedAt.Time
	}
	return t, nil
}

// CreateTransaction inserts a completed platform transaction. The
// payment reference is unique; a redelivered webhook surfaces as
// ErrDuplicateEntry.
func (r *RevenueRepository) CreateTransaction(t *models.PlatformTransaction) (*models.PlatformTransaction, error) {
	query := `
		INSERT INTO platform_transactions (event_id, seller_id, buyer_id, ticket_id,
			payment_ref, provider, gross_cents, platform_fee_cents, seller_payout_cents,
			status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + transactionColumns

	created, err := scanTransaction(r.db.QueryRow(
		query,
		t.EventID,
		t.SellerID,
		t.BuyerID,
		t.TicketID,
		t.PaymentRef,
		t.Provider,
		t.GrossCents,
		t.PlatformFeeCents,
		t.SellerPayoutCents,
		models.TransactionCompleted,
		time.Now(),
	))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return created, nil
}

// GetTransactionByID retrieves a transaction by ID
func (r *RevenueRepository) GetTransactionByID(id int) (*models.PlatformTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM platform_transactions WHERE id = $1`

	transaction, err := scanTransaction(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return transaction, nil
}

// GetTransactionByPaymentRef retrieves a transaction by its payment
// reference (the webhook idempotency token)
func (r *RevenueRepository) GetTransactionByPaymentRef(paymentRef string) (*models.PlatformTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM platform_transactions WHERE payment_ref = $1`

	transaction, err := scanTransaction(r.db.QueryRow(query, paymentRef))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by payment ref: %w", err)
	}

	return transaction, nil
}

// GetTransactionsBySeller retrieves a seller's transaction history,
// newest first
func (r *RevenueRepository) GetTransactionsBySeller(sellerID, limit, offset int) ([]*models.PlatformTransaction, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM platform_transactions WHERE seller_id = $1`,
		sellerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + `
		FROM platform_transactions
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, sellerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.PlatformTransaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, total, nil
}

// RefundTransaction performs the single allowed state change of a
// transaction together with the seller's debit, in one transaction.
// When the seller's available balance cannot cover debitCents the whole
// refund rolls back, so a failed attempt leaves the transaction
// completed and retryable. Returns ErrAlreadyRefunded when the
// transition has already happened.
func (r *RevenueRepository) RefundTransaction(transactionID int, refundCents int64, sellerID int, debitCents int64, at time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE platform_transactions
		SET status = $2, refund_cents = $3, refunded_at = $4
		WHERE id = $1 AND status = $5`,
		transactionID, models.TransactionRefunded, refundCents, at, models.TransactionCompleted)
	if err != nil {
		return fmt.Errorf("failed to mark transaction refunded: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetTransactionByID(transactionID); err != nil {
			return err
		}
		return models.ErrAlreadyRefunded
	}

	if debitCents > 0 {
		result, err := tx.Exec(`
			UPDATE seller_balances
			SET available_cents = available_cents - $2,
			    earnings_cents = earnings_cents - $2,
			    updated_at = $3
			WHERE seller_id = $1 AND available_cents >= $2`,
			sellerID, debitCents, at)
		if err != nil {
			return fmt.Errorf("failed to debit seller for refund: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			if _, err := r.GetSellerBalance(sellerID); err != nil {
				return err
			}
			return models.ErrInsufficientBalance
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit refund: %w", err)
	}

	return nil
}

// GetSellerBalance retrieves the balance row for a seller
func (r *RevenueRepository) GetSellerBalance(sellerID int) (*models.SellerBalance, error) {
	balance := &models.SellerBalance{}
	err := r.db.QueryRow(`
		SELECT seller_id, available_cents, pending_cents, earnings_cents, payouts_cents, updated_at
		FROM seller_balances
		WHERE seller_id = $1`, sellerID).Scan(
		&balance.SellerID,
		&balance.AvailableCents,
		&balance.PendingCents,
		&balance.EarningsCents,
		&balance.PayoutsCents,
		&balance.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller balance: %w", err)
	}

	return balance, nil
}

// CreditSeller adds a payout-side amount to the seller's available
// balance and lifetime earnings, creating the balance row lazily on
// the seller's first transaction
func (r *RevenueRepository) CreditSeller(sellerID int, amountCents int64) error {
	query := `
		INSERT INTO seller_balances (seller_id, available_cents, earnings_cents, updated_at)
		VALUES ($1, $2, $2, $3)
		ON CONFLICT (seller_id) DO UPDATE
		SET available_cents = seller_balances.available_cents + $2,
		    earnings_cents = seller_balances.earnings_cents + $2,
		    updated_at = $3`

	if _, err := r.db.Exec(query, sellerID, amountCents, time.Now()); err != nil {
		return fmt.Errorf("failed to credit seller: %w", err)
	}

	return nil
}

// CreatePayout atomically moves the amount from available to pending
// and records the payout request. The balance check and the move are
// one conditional statement, so two racing requests can never both
// draw on the same funds.
func (r *RevenueRepository) CreatePayout(sellerID int, amountCents int64, bankDetails string) (*models.PayoutRequest, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE seller_balances
		SET available_cents = available_cents - $2,
		    pending_cents = pending_cents + $2,
		    updated_at = $3
		WHERE seller_id = $1 AND available_cents >= $2`,
		sellerID, amountCents, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to reserve payout funds: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetSellerBalance(sellerID); err != nil {
			return nil, err
		}
		return nil, models.ErrInsufficientBalance
	}

	payout := &models.PayoutRequest{
		SellerID:    sellerID,
		AmountCents: amountCents,
		BankDetails: bankDetails,
		Status:      models.PayoutPending,
	}

	err = tx.QueryRow(`
		INSERT INTO payout_requests (seller_id, amount_cents, bank_details, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, requested_at`,
		sellerID, amountCents, bankDetails, models.PayoutPending, time.Now(),
	).Scan(&payout.ID, &payout.RequestedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create payout request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payout request: %w", err)
	}

	return payout, nil
}

// GetPayoutByID retrieves a payout request by ID
func (r *RevenueRepository) GetPayoutByID(id int) (*models.PayoutRequest, error) {
	payout := &models.PayoutRequest{}
	var completedAt sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, seller_id, amount_cents, bank_details, status, requested_at, completed_at
		FROM payout_requests
		WHERE id = $1`, id).Scan(
		&payout.ID,
		&payout.SellerID,
		&payout.AmountCents,
		&payout.BankDetails,
		&payout.Status,
		&payout.RequestedAt,
		&completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout request: %w", err)
	}

	if completedAt.Valid {
		payout.CompletedAt = &completedAt.Time
	}

	return payout, nil
}

// CompletePayout transitions a pending payout to completed and moves
// its amount from the seller's pending balance into lifetime payouts
func (r *RevenueRepository) CompletePayout(payoutID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sellerID int
	var amountCents int64
	now := time.Now()

	err = tx.QueryRow(`
		UPDATE payout_requests
		SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4
		RETURNING seller_id, amount_cents`,
		payoutID, models.PayoutCompleted, now, models.PayoutPending,
	).Scan(&sellerID, &amountCents)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, err := r.GetPayoutByID(payoutID); err != nil {
				return err
			}
			return models.ErrPayoutNotPending
		}
		return fmt.Errorf("failed to complete payout: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE seller_balances
		SET pending_cents = pending_cents - $2,
		    payouts_cents = payouts_cents + $2,
		    updated_at = $3
		WHERE seller_id = $1`,
		sellerID, amountCents, now)
	if err != nil {
		return fmt.Errorf("failed to settle payout funds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payout completion: %w", err)
	}

	return nil
}

// GetPayoutsBySeller retrieves a seller's payout requests, newest first
func (r *RevenueRepository) GetPayoutsBySeller(sellerID, limit, offset int) ([]*models.PayoutRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(`
		SELECT id, seller_id, amount_cents, bank_details, status, requested_at, completed_at
		FROM payout_requests
		WHERE seller_id = $1
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get payout requests: %w", err)
	}
	defer rows.Close()

	var payouts []*models.PayoutRequest
	for rows.Next() {
		payout := &models.PayoutRequest{}
		var completedAt sql.NullTime
		err := rows.Scan(
			&payout.ID,
			&payout.SellerID,
			&payout.AmountCents,
			&payout.BankDetails,
			&payout.Status,
			&payout.RequestedAt,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout request: %w", err)
		}
		if completedAt.Valid {
			payout.CompletedAt = &completedAt.Time
		}
		payouts = append(payouts, payout)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payout requests: %w", err)
	}

	return payouts, nil
}
