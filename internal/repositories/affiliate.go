package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// AffiliateRepository handles referral programs and their running
// sale counters
type AffiliateRepository struct {
	db *sql.DB
}

// NewAffiliateRepository creates a new affiliate repository
func NewAffiliateRepository(db *sql.DB) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

const affiliateColumns = `id, event_id, affiliate_user_id, referral_code,
	commission_cents, total_sold, total_earned_cents, is_active, created_at`

func scanAffiliateProgram(row interface{ Scan(...interface{}) error }) (*models.AffiliateProgram, error) {
	p := &models.AffiliateProgram{}
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.AffiliateUserID,
		&p.ReferralCode,
		&p.CommissionCents,
		&p.TotalSold,
		&p.TotalEarnedCents,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProgram creates a new affiliate program
func (r *AffiliateRepository) CreateProgram(req *models.AffiliateProgramCreateRequest) (*models.AffiliateProgram, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO affiliate_programs (event_id, affiliate_user_id, referral_code, commission_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + affiliateColumns

	program, err := scanAffiliateProgram(r.db.QueryRow(
		query,
		req.EventID,
		req.AffiliateUserID,
		strings.TrimSpace(req.ReferralCode),
		req.CommissionCents,
		time.Now(),
	))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create affiliate program: %w", err)
	}

	return program, nil
}

// GetActiveByCode resolves an active program by referral code.
// Missing or deactivated codes both surface as ErrInvalidReferral.
func (r *AffiliateRepository) GetActiveByCode(referralCode string) (*models.AffiliateProgram, error) {
	query := `SELECT ` + affiliateColumns + `
		FROM affiliate_programs
		WHERE referral_code = $1 AND is_active = TRUE`

	program, err := scanAffiliateProgram(r.db.QueryRow(query, referralCode))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrInvalidReferral
		}
		return nil, fmt.Errorf("failed to get affiliate program: %w", err)
	}

	return program, nil
}

// RecordSale increments a program's running counters by one referred
// ticket
func (r *AffiliateRepository) RecordSale(programID int, commissionCents int64) error {
	result, err := r.db.Exec(`
		UPDATE affiliate_programs
		SET total_sold = total_sold + 1,
		    total_earned_cents = total_earned_cents + $2
		WHERE id = $1`,
		programID, commissionCents)
	if err != nil {
		return fmt.Errorf("failed to record affiliate sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrInvalidReferral
	}

	return nil
}

// SetActive activates or deactivates a program
func (r *AffiliateRepository) SetActive(programID int, active bool) error {
	result, err := r.db.Exec(
		`UPDATE affiliate_programs SET is_active = $2 WHERE id = $1`,
		programID, active,
	)
	if err != nil {
		return fmt.Errorf("failed to update affiliate program: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrInvalidReferral
	}

	return nil
}
