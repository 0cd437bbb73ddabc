package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"boxoffice/internal/models"
)

// IdempotencyRepository is the explicit record of processed payment
// deliveries. The webhook entry points claim a key before acting;
// a redelivery loses the claim and no-ops.
type IdempotencyRepository struct {
	db *sql.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Claim attempts to register the key for the given scope. Returns
// true when this caller won the claim; false when the key was already
// processed (the prior result id, if recorded, is returned alongside).
func (r *IdempotencyRepository) Claim(key, scope string) (bool, *int, error) {
	if key == "" {
		return false, nil, fmt.Errorf("%w: idempotency key is required", models.ErrInvalidInput)
	}

	result, err := r.db.Exec(`
		INSERT INTO idempotency_keys (key, scope, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING`,
		key, scope, time.Now())
	if err != nil {
		return false, nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 1 {
		return true, nil, nil
	}

	var resultID sql.NullInt64
	err = r.db.QueryRow(`SELECT result_id FROM idempotency_keys WHERE key = $1`, key).Scan(&resultID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}

	if resultID.Valid {
		v := int(resultID.Int64)
		return false, &v, nil
	}
	return false, nil, nil
}

// SetResult records the outcome id of a processed key so redeliveries
// can return the original result
func (r *IdempotencyRepository) SetResult(key string, resultID int) error {
	if _, err := r.db.Exec(`UPDATE idempotency_keys SET result_id = $2 WHERE key = $1`, key, resultID); err != nil {
		return fmt.Errorf("failed to record idempotency result: %w", err)
	}
	return nil
}

// Release drops a claimed key after a failed processing attempt so the
// delivery can be retried
func (r *IdempotencyRepository) Release(key string) error {
	if _, err := r.db.Exec(`DELETE FROM idempotency_keys WHERE key = $1 AND result_id IS NULL`, key); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
