package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

// CreateEventLog appends an audit event
func (s *PostgresStore) CreateEventLog(ctx context.Context, event *models.EventLog) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO event_logs (
			id, created_at, institution_id, entity_id, type, level,
			description, details
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.CreatedAt, event.InstitutionID, event.EntityID,
		event.Type, event.Level, event.Description, event.Details,
	)
	return err
}

// ListEventLogs lists audit events, newest first
func (s *PostgresStore) ListEventLogs(ctx context.Context, filters EventLogFilters, limit, offset int) ([]*models.EventLog, int64, error) {
	var conds []string
	var args []interface{}

	if filters.InstitutionID != nil {
		args = append(args, *filters.InstitutionID)
		conds = append(conds, fmt.Sprintf("institution_id = $%d", len(args)))
	}
	if filters.Type != nil {
		args = append(args, *filters.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filters.Level != nil {
		args = append(args, *filters.Level)
		conds = append(conds, fmt.Sprintf("level = $%d", len(args)))
	}
	if filters.StartTime != nil {
		args = append(args, *filters.StartTime)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filters.EndTime != nil {
		args = append(args, *filters.EndTime)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + conds[0]
		for _, c := range conds[1:] {
			where += " AND " + c
		}
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event_logs"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	if offset < 0 {
		offset = 0
	}
	limitClause := "ALL"
	if limit > 0 {
		limitClause = strconv.Itoa(limit)
	}

	query := `
		SELECT id, created_at, institution_id, entity_id, type, level,
		       description, details
		FROM event_logs` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %d", limitClause, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*models.EventLog
	for rows.Next() {
		e := &models.EventLog{}
		err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.InstitutionID, &e.EntityID,
			&e.Type, &e.Level, &e.Description, &e.Details,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}

	return events, count, rows.Err()
}
