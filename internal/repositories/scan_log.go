package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// ScanLogRepository appends and queries the immutable check-in audit
// trail. There is no update or delete path.
type ScanLogRepository struct {
	db *sql.DB
}

// NewScanLogRepository creates a new scan log repository
func NewScanLogRepository(db *sql.DB) *ScanLogRepository {
	return &ScanLogRepository{db: db}
}

// Append writes one audit record for a check-in attempt
func (r *ScanLogRepository) Append(log *models.ScanLog) error {
	query := `
		INSERT INTO scan_logs (event_id, ticket_id, event_day_id, identifier, result, method, actor_id, reason, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	scannedAt := log.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	err := r.db.QueryRow(
		query,
		log.EventID,
		log.TicketID,
		log.EventDayID,
		log.Identifier,
		log.Result,
		log.Method,
		log.ActorID,
		log.Reason,
		scannedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to append scan log: %w", err)
	}

	log.ScannedAt = scannedAt
	return nil
}

// Search retrieves scan log entries with filters, newest first
func (r *ScanLogRepository) Search(filters models.ScanLogFilters) ([]*models.ScanLog, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.EventID > 0 {
		conditions = append(conditions, fmt.Sprintf("event_id = $%d", argIndex))
		args = append(args, filters.EventID)
		argIndex++
	}

	if filters.EventDayID > 0 {
		conditions = append(conditions, fmt.Sprintf("event_day_id = $%d", argIndex))
		args = append(args, filters.EventDayID)
		argIndex++
	}

	if filters.Result != "" {
		conditions = append(conditions, fmt.Sprintf("result = $%d", argIndex))
		args = append(args, filters.Result)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM scan_logs %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count scan logs: %w", err)
	}

	if filters.Limit <= 0 {
		filters.Limit = 100
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, event_id, ticket_id, event_day_id, identifier, result, method, actor_id, reason, scanned_at
		FROM scan_logs
		%s
		ORDER BY scanned_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argIndex, argIndex+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search scan logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ScanLog
	for rows.Next() {
		log := &models.ScanLog{}
		var ticketID, dayID sql.NullInt64
		err := rows.Scan(
			&log.ID,
			&log.EventID,
			&ticketID,
			&dayID,
			&log.Identifier,
			&log.Result,
			&log.Method,
			&log.ActorID,
			&log.Reason,
			&log.ScannedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if ticketID.Valid {
			v := int(ticketID.Int64)
			log.TicketID = &v
		}
		if dayID.Valid {
			v := int(dayID.Int64)
			log.EventDayID = &v
		}
		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating scan logs: %w", err)
	}

	return logs, total, nil
}

// Attendance aggregates scan outcomes for one event
func (r *ScanLogRepository) Attendance(eventID int) (*models.AttendanceSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE result = 'valid'),
			COUNT(*) FILTER (WHERE result = 'already_used'),
			COUNT(*) FILTER (WHERE result = 'invalid'),
			COUNT(*) FILTER (WHERE method = 'override')
		FROM scan_logs
		WHERE event_id = $1`

	summary := &models.AttendanceSummary{EventID: eventID}
	err := r.db.QueryRow(query, eventID).Scan(
		&summary.Valid,
		&summary.AlreadyUsed,
		&summary.Invalid,
		&summary.Overrides,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance summary: %w", err)
	}

	return summary, nil
}
