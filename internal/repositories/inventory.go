package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"boxoffice/internal/models"
)

// InventoryRepository handles ticket type data and the allocation
// counters. Every counter mutation is a single conditional UPDATE so
// two racing callers can never both commit against a stale value.
type InventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const ticketTypeColumns = `id, event_id, event_day_id, name, category, price_cents,
	has_early_bird, early_bird_cents, early_bird_end_date,
	allocated_quantity, table_allocations, bundle_allocations,
	available_quantity, sold_count, is_active, created_at, updated_at`

func scanTicketType(row interface{ Scan(...interface{}) error }) (*models.TicketType, error) {
	tt := &models.TicketType{}
	var dayID sql.NullInt64
	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&dayID,
		&tt.Name,
		&tt.Category,
		&tt.PriceCents,
		&tt.HasEarlyBird,
		&tt.EarlyBirdCents,
		&tt.EarlyBirdEndDate,
		&tt.AllocatedQuantity,
		&tt.TableAllocations,
		&tt.BundleAllocations,
		&tt.AvailableQuantity,
		&tt.SoldCount,
		&tt.IsActive,
		&tt.CreatedAt,
		&tt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dayID.Valid {
		v := int(dayID.Int64)
		tt.EventDayID = &v
	}
	return tt, nil
}

// CreateTicketType creates a new ticket type with its full allocation
// individually sellable
func (r *InventoryRepository) CreateTicketType(req *models.TicketTypeCreateRequest) (*models.TicketType, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO ticket_types (event_id, event_day_id, name, category, price_cents,
			has_early_bird, early_bird_cents, early_bird_end_date,
			allocated_quantity, available_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10, $10)
		RETURNING ` + ticketTypeColumns

	now := time.Now()
	row := r.db.QueryRow(
		query,
		req.EventID,
		req.EventDayID,
		req.Name,
		req.Category,
		req.PriceCents,
		req.HasEarlyBird,
		req.EarlyBirdCents,
		req.EarlyBirdEndDate,
		req.Quantity,
		now,
	)

	ticketType, err := scanTicketType(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}

	return ticketType, nil
}

// GetTicketTypeByID retrieves a ticket type by ID
func (r *InventoryRepository) GetTicketTypeByID(id int) (*models.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1`

	ticketType, err := scanTicketType(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	return ticketType, nil
}

// GetTicketTypesByEvent retrieves all ticket types for an event
func (r *InventoryRepository) GetTicketTypesByEvent(eventID int) ([]*models.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY price_cents ASC, created_at ASC`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types by event: %w", err)
	}
	defer rows.Close()

	var ticketTypes []*models.TicketType
	for rows.Next() {
		ticketType, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		ticketTypes = append(ticketTypes, ticketType)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	return ticketTypes, nil
}

// AllocateToSubpool atomically moves quantity units from the
// individually sellable pool into the table or bundle sub-pool
func (r *InventoryRepository) AllocateToSubpool(ticketTypeID int, kind models.AllocationKind, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: allocation quantity must be positive", models.ErrInvalidInput)
	}

	var column string
	switch kind {
	case models.AllocationTable:
		column = "table_allocations"
	case models.AllocationBundle:
		column = "bundle_allocations"
	default:
		return fmt.Errorf("%w: unknown allocation kind %q", models.ErrInvalidInput, kind)
	}

	query := fmt.Sprintf(`
		UPDATE ticket_types
		SET available_quantity = available_quantity - $2,
		    %s = %s + $2,
		    updated_at = $3
		WHERE id = $1 AND available_quantity >= $2`, column, column)

	result, err := r.db.Exec(query, ticketTypeID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to allocate to sub-pool: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing row from a shortfall
		if _, err := r.GetTicketTypeByID(ticketTypeID); err != nil {
			return err
		}
		return models.ErrInsufficientInventory
	}

	return nil
}

// RecordSale atomically moves quantity units from available to sold.
// This is the single serialization point for concurrent purchases of
// the same ticket type.
func (r *InventoryRepository) RecordSale(ticketTypeID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: sale quantity must be positive", models.ErrInvalidInput)
	}

	query := `
		UPDATE ticket_types
		SET available_quantity = available_quantity - $2,
		    sold_count = sold_count + $2,
		    updated_at = $3
		WHERE id = $1 AND available_quantity >= $2`

	result, err := r.db.Exec(query, ticketTypeID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetTicketTypeByID(ticketTypeID); err != nil {
			return err
		}
		return models.ErrSoldOut
	}

	return nil
}

// ReverseSale returns quantity sold units to the sellable pool on the
// refund path
func (r *InventoryRepository) ReverseSale(ticketTypeID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: reversal quantity must be positive", models.ErrInvalidInput)
	}

	query := `
		UPDATE ticket_types
		SET available_quantity = available_quantity + $2,
		    sold_count = sold_count - $2,
		    updated_at = $3
		WHERE id = $1 AND sold_count >= $2`

	result, err := r.db.Exec(query, ticketTypeID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to reverse sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetTicketTypeByID(ticketTypeID); err != nil {
			return err
		}
		return fmt.Errorf("%w: cannot reverse more than sold", models.ErrInvalidInput)
	}

	return nil
}

// SetActive activates or deactivates a ticket type. Ticket types are
// never deleted.
func (r *InventoryRepository) SetActive(ticketTypeID int, active bool) error {
	result, err := r.db.Exec(
		`UPDATE ticket_types SET is_active = $2, updated_at = $3 WHERE id = $1`,
		ticketTypeID, active, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket type: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrTicketTypeNotFound
	}

	return nil
}
