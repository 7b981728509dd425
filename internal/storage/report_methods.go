package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

const reportColumns = `
	id, created_at, updated_at, institution_id, mobile_user_id, photo_id,
	title, summary, stage, status, issued_at`

func scanReport(row interface{ Scan(...interface{}) error }) (*models.Report, error) {
	r := &models.Report{}
	err := row.Scan(
		&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.InstitutionID, &r.MobileUserID,
		&r.PhotoID, &r.Title, &r.Summary, &r.Stage, &r.Status, &r.IssuedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

// CreateReport creates a report and bumps counters
func (s *PostgresStore) CreateReport(ctx context.Context, report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = models.ReportDraft
	}

	query := `
		INSERT INTO reports (
			id, created_at, updated_at, institution_id, mobile_user_id,
			photo_id, title, summary, stage, status, issued_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := s.db.ExecContext(ctx, query,
		report.ID, report.CreatedAt, report.UpdatedAt, report.InstitutionID,
		report.MobileUserID, report.PhotoID, report.Title, report.Summary,
		report.Stage, report.Status, report.IssuedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE institutions SET report_count = report_count + 1 WHERE id = $1`,
		report.InstitutionID); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE mobile_users SET report_count = report_count + 1 WHERE id = $1`,
		report.MobileUserID)
	return err
}

// GetReport gets a report by ID
func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	query := `SELECT` + reportColumns + ` FROM reports WHERE id = $1`
	return scanReport(s.db.QueryRowContext(ctx, query, id))
}

// UpdateReport updates a report
func (s *PostgresStore) UpdateReport(ctx context.Context, report *models.Report) error {
	report.UpdatedAt = time.Now()

	query := `
		UPDATE reports SET
			updated_at = $2, photo_id = $3, title = $4, summary = $5,
			stage = $6, status = $7, issued_at = $8
		WHERE id = $1`

	return s.execExpectingRow(ctx, query,
		report.ID, report.UpdatedAt, report.PhotoID, report.Title,
		report.Summary, report.Stage, report.Status, report.IssuedAt,
	)
}

// DeleteReport deletes a report
func (s *PostgresStore) DeleteReport(ctx context.Context, id uuid.UUID) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}

	if err := s.execExpectingRow(ctx, "DELETE FROM reports WHERE id = $1", id); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE institutions SET report_count = GREATEST(report_count - 1, 0)
		 WHERE id = $1`,
		report.InstitutionID)
	return err
}

// ListReports lists reports, optionally scoped
func (s *PostgresStore) ListReports(ctx context.Context, institutionID *uuid.UUID, mobileUserID *uuid.UUID) ([]*models.Report, error) {
	query := `SELECT` + reportColumns + ` FROM reports`
	var conds []string
	var args []interface{}

	if institutionID != nil {
		args = append(args, *institutionID)
		conds = append(conds, "institution_id = $1")
	}
	if mobileUserID != nil {
		args = append(args, *mobileUserID)
		if len(args) == 1 {
			conds = append(conds, "mobile_user_id = $1")
		} else {
			conds = append(conds, "mobile_user_id = $2")
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + conds[0]
		for _, c := range conds[1:] {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}
