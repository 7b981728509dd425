package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

const licenseColumns = `
	id, created_at, updated_at, institution_id, status, plan, seat_limit,
	starts_at, expires_at, notes`

func scanLicense(row interface{ Scan(...interface{}) error }) (*models.License, error) {
	lic := &models.License{}
	err := row.Scan(
		&lic.ID, &lic.CreatedAt, &lic.UpdatedAt, &lic.InstitutionID,
		&lic.Status, &lic.Plan, &lic.SeatLimit,
		&lic.StartsAt, &lic.ExpiresAt, &lic.Notes,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return lic, err
}

// CreateLicense creates a new license
func (s *PostgresStore) CreateLicense(ctx context.Context, lic *models.License) error {
	if lic.ID == uuid.Nil {
		lic.ID = uuid.New()
	}

	now := time.Now()
	lic.CreatedAt = now
	lic.UpdatedAt = now

	query := `
		INSERT INTO licenses (
			id, created_at, updated_at, institution_id, status, plan,
			seat_limit, starts_at, expires_at, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := s.db.ExecContext(ctx, query,
		lic.ID, lic.CreatedAt, lic.UpdatedAt, lic.InstitutionID,
		lic.Status, lic.Plan, lic.SeatLimit,
		lic.StartsAt, lic.ExpiresAt, lic.Notes,
	)

	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetLicense gets a license by ID
func (s *PostgresStore) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	query := `SELECT` + licenseColumns + ` FROM licenses WHERE id = $1`
	return scanLicense(s.db.QueryRowContext(ctx, query, id))
}

// UpdateLicense updates a license
func (s *PostgresStore) UpdateLicense(ctx context.Context, lic *models.License) error {
	lic.UpdatedAt = time.Now()

	query := `
		UPDATE licenses SET
			updated_at = $2, status = $3, plan = $4, seat_limit = $5,
			starts_at = $6, expires_at = $7, notes = $8
		WHERE id = $1`

	return s.execExpectingRow(ctx, query,
		lic.ID, lic.UpdatedAt, lic.Status, lic.Plan, lic.SeatLimit,
		lic.StartsAt, lic.ExpiresAt, lic.Notes,
	)
}

// DeleteLicense deletes a license
func (s *PostgresStore) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	return s.execExpectingRow(ctx, "DELETE FROM licenses WHERE id = $1", id)
}

// ListLicenses lists licenses, optionally scoped to an institution
func (s *PostgresStore) ListLicenses(ctx context.Context, institutionID *uuid.UUID) ([]*models.License, error) {
	query := `SELECT` + licenseColumns + ` FROM licenses`
	var args []interface{}

	if institutionID != nil {
		query += ` WHERE institution_id = $1`
		args = append(args, *institutionID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		lic, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, lic)
	}

	return licenses, rows.Err()
}
