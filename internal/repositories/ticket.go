package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// TicketRepository handles issued tickets, bundle purchases and the
// per-day usage records of bundle tickets
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, ticket_code, qr_payload, event_id, ticket_type_id,
	purchase_ref, seat_label, price_cents, status, scanned, scanned_at, scanned_by,
	is_bundle_ticket, bundle_id, event_day_id, created_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	var scannedAt sql.NullTime
	var scannedBy, bundleID, dayID sql.NullInt64
	err := row.Scan(
		&t.ID,
		&t.TicketCode,
		&t.QRPayload,
		&t.EventID,
		&t.TicketTypeID,
		&t.PurchaseRef,
		&t.SeatLabel,
		&t.PriceCents,
		&t.Status,
		&t.Scanned,
		&scannedAt,
		&scannedBy,
		&t.IsBundleTicket,
		&bundleID,
		&dayID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if scannedAt.Valid {
		t.ScannedAt = &scannedAt.Time
	}
	if scannedBy.Valid {
		v := int(scannedBy.Int64)
		t.ScannedBy = &v
	}
	if bundleID.Valid {
		v := int(bundleID.Int64)
		t.BundleID = &v
	}
	if dayID.Valid {
		v := int(dayID.Int64)
		t.EventDayID = &v
	}
	return t, nil
}

// CreateTicket inserts a new ticket. Returns ErrDuplicateEntry when
// the (event, code, day) uniqueness constraint trips, so callers can
// regenerate the code and retry.
func (r *TicketRepository) CreateTicket(t *models.Ticket) (*models.Ticket, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO tickets (ticket_code, qr_payload, event_id, ticket_type_id,
			purchase_ref, seat_label, price_cents, status, is_bundle_ticket,
			bundle_id, event_day_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + ticketColumns

	created, err := scanTicket(r.db.QueryRow(
		query,
		t.TicketCode,
		t.QRPayload,
		t.EventID,
		t.TicketTypeID,
		t.PurchaseRef,
		t.SeatLabel,
		t.PriceCents,
		t.Status,
		t.IsBundleTicket,
		t.BundleID,
		t.EventDayID,
		time.Now(),
	))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return created, nil
}

// GetTicketByID retrieves a ticket by ID
func (r *TicketRepository) GetTicketByID(id int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// GetTicketByCode retrieves a non-bundle ticket by its short code
func (r *TicketRepository) GetTicketByCode(code string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_code = $1 AND is_bundle_ticket = FALSE`

	ticket, err := scanTicket(r.db.QueryRow(query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket by code: %w", err)
	}

	return ticket, nil
}

// GetBundleTicketForDay retrieves the day-scoped ticket of a bundle by
// the shared access code and day
func (r *TicketRepository) GetBundleTicketForDay(code string, eventDayID int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_code = $1 AND event_day_id = $2 AND is_bundle_ticket = TRUE`

	ticket, err := scanTicket(r.db.QueryRow(query, code, eventDayID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get bundle ticket: %w", err)
	}

	return ticket, nil
}

// GetTicketsByPurchaseRef retrieves all tickets minted for a purchase
func (r *TicketRepository) GetTicketsByPurchaseRef(purchaseRef string) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE purchase_ref = $1
		ORDER BY id ASC`

	rows, err := r.db.Query(query, purchaseRef)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets by purchase: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// MarkUsed performs the atomic check-then-act of a scan: exactly one
// of N concurrent callers flips the scanned flag. Returns false when
// another scan already won.
func (r *TicketRepository) MarkUsed(ticketID, actorID int, at time.Time) (bool, error) {
	query := `
		UPDATE tickets
		SET status = $2, scanned = TRUE, scanned_at = $3, scanned_by = $4
		WHERE id = $1 AND status = $5 AND scanned = FALSE`

	result, err := r.db.Exec(query, ticketID, models.TicketUsed, at, actorID, models.TicketValid)
	if err != nil {
		return false, fmt.Errorf("failed to mark ticket used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// MarkDayUsed consumes one day of a bundle ticket: the day-scoped
// ticket row is flipped and a usage row is appended in one
// transaction. The (ticket, day) unique constraint makes the insert
// the winner-picking step under concurrency.
func (r *TicketRepository) MarkDayUsed(ticketID, eventDayID, actorID int, at time.Time) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO ticket_day_usage (ticket_id, event_day_id, used_at, used_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticket_id, event_day_id) DO NOTHING`,
		ticketID, eventDayID, at, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to record day usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return false, nil
	}

	_, err = tx.Exec(`
		UPDATE tickets
		SET status = $2, scanned = TRUE, scanned_at = $3, scanned_by = $4
		WHERE id = $1`,
		ticketID, models.TicketUsed, at, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to mark day ticket used: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit day usage: %w", err)
	}

	return true, nil
}

// ForceUse marks a ticket used regardless of its current scan state.
// Staff-override escape hatch; the caller logs the override.
func (r *TicketRepository) ForceUse(ticketID, actorID int, at time.Time) error {
	result, err := r.db.Exec(`
		UPDATE tickets
		SET status = $2, scanned = TRUE, scanned_at = $3, scanned_by = $4
		WHERE id = $1`,
		ticketID, models.TicketUsed, at, actorID)
	if err != nil {
		return fmt.Errorf("failed to force check-in: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrTicketNotFound
	}

	return nil
}

// UpdateTicketStatus transitions a ticket to cancelled or refunded
func (r *TicketRepository) UpdateTicketStatus(ticketID int, status models.TicketStatus) error {
	result, err := r.db.Exec(`UPDATE tickets SET status = $2 WHERE id = $1`, ticketID, status)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrTicketNotFound
	}

	return nil
}

// GetDayUsage returns the consumed days of a ticket, oldest first
func (r *TicketRepository) GetDayUsage(ticketID int) ([]*models.DayUsage, error) {
	query := `
		SELECT id, ticket_id, event_day_id, used_at, used_by
		FROM ticket_day_usage
		WHERE ticket_id = $1
		ORDER BY used_at ASC`

	rows, err := r.db.Query(query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get day usage: %w", err)
	}
	defer rows.Close()

	var usages []*models.DayUsage
	for rows.Next() {
		usage := &models.DayUsage{}
		if err := rows.Scan(&usage.ID, &usage.TicketID, &usage.EventDayID, &usage.UsedAt, &usage.UsedBy); err != nil {
			return nil, fmt.Errorf("failed to scan day usage: %w", err)
		}
		usages = append(usages, usage)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day usage: %w", err)
	}

	return usages, nil
}

// CreateBundle inserts a bundle purchase and its included-day rows
func (r *TicketRepository) CreateBundle(bundle *models.BundlePurchase) (*models.BundlePurchase, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bundle_purchases (event_id, buyer_id, purchase_ref, access_code, qr_payload, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = tx.QueryRow(
		query,
		bundle.EventID,
		bundle.BuyerID,
		bundle.PurchaseRef,
		bundle.AccessCode,
		bundle.QRPayload,
		bundle.TotalCents,
		time.Now(),
	).Scan(&bundle.ID, &bundle.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create bundle purchase: %w", err)
	}

	for _, day := range bundle.Days {
		_, err = tx.Exec(`
			INSERT INTO bundle_days (bundle_id, event_day_id, ticket_type_id)
			VALUES ($1, $2, $3)`,
			bundle.ID, day.EventDayID, day.TicketTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to create bundle day: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bundle purchase: %w", err)
	}

	return bundle, nil
}

// GetBundleByCode retrieves a bundle purchase with its days by the
// shared access code
func (r *TicketRepository) GetBundleByCode(accessCode string) (*models.BundlePurchase, error) {
	bundle := &models.BundlePurchase{}
	err := r.db.QueryRow(`
		SELECT id, event_id, buyer_id, purchase_ref, access_code, qr_payload, total_cents, created_at
		FROM bundle_purchases
		WHERE access_code = $1`, accessCode).Scan(
		&bundle.ID,
		&bundle.EventID,
		&bundle.BuyerID,
		&bundle.PurchaseRef,
		&bundle.AccessCode,
		&bundle.QRPayload,
		&bundle.TotalCents,
		&bundle.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to get bundle purchase: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT event_day_id, ticket_type_id
		FROM bundle_days
		WHERE bundle_id = $1
		ORDER BY id ASC`, bundle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bundle days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day models.BundleDay
		if err := rows.Scan(&day.EventDayID, &day.TicketTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan bundle day: %w", err)
		}
		bundle.Days = append(bundle.Days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bundle days: %w", err)
	}

	return bundle, nil
}
