package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

const mobileUserColumns = `
	id, created_at, updated_at, institution_id, name, phone, email,
	birth_year, gender, status, last_diagnosis_at, photo_count, report_count`

func scanMobileUser(row interface{ Scan(...interface{}) error }) (*models.MobileUser, error) {
	u := &models.MobileUser{}
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.InstitutionID,
		&u.Name, &u.Phone, &u.Email, &u.BirthYear, &u.Gender,
		&u.Status, &u.LastDiagnosisAt, &u.PhotoCount, &u.ReportCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// CreateMobileUser creates a mobile user and bumps the owning
// institution's user counters.
func (s *PostgresStore) CreateMobileUser(ctx context.Context, user *models.MobileUser) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = models.MobileUserActive
	}

	query := `
		INSERT INTO mobile_users (
			id, created_at, updated_at, institution_id, name, phone, email,
			birth_year, gender, status, last_diagnosis_at, photo_count,
			report_count
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.UpdatedAt, user.InstitutionID,
		user.Name, user.Phone, user.Email, user.BirthYear, user.Gender,
		user.Status, user.LastDiagnosisAt, user.PhotoCount, user.ReportCount,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE institutions SET
			mobile_user_count = mobile_user_count + 1,
			seat_current = seat_current + 1
		 WHERE id = $1`,
		user.InstitutionID)
	return err
}

// GetMobileUser gets a mobile user by ID
func (s *PostgresStore) GetMobileUser(ctx context.Context, id uuid.UUID) (*models.MobileUser, error) {
	query := `SELECT` + mobileUserColumns + ` FROM mobile_users WHERE id = $1`
	return scanMobileUser(s.db.QueryRowContext(ctx, query, id))
}

// UpdateMobileUser updates a mobile user
func (s *PostgresStore) UpdateMobileUser(ctx context.Context, user *models.MobileUser) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE mobile_users SET
			updated_at = $2, name = $3, phone = $4, email = $5,
			birth_year = $6, gender = $7, status = $8, last_diagnosis_at = $9
		WHERE id = $1`

	return s.execExpectingRow(ctx, query,
		user.ID, user.UpdatedAt, user.Name, user.Phone, user.Email,
		user.BirthYear, user.Gender, user.Status, user.LastDiagnosisAt,
	)
}

// DeleteMobileUser deletes a mobile user
func (s *PostgresStore) DeleteMobileUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetMobileUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.execExpectingRow(ctx, "DELETE FROM mobile_users WHERE id = $1", id); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE institutions SET
			mobile_user_count = GREATEST(mobile_user_count - 1, 0),
			seat_current = GREATEST(seat_current - 1, 0)
		 WHERE id = $1`,
		user.InstitutionID)
	return err
}

// ListMobileUsers lists mobile users, optionally scoped to an institution
func (s *PostgresStore) ListMobileUsers(ctx context.Context, institutionID *uuid.UUID) ([]*models.MobileUser, error) {
	query := `SELECT` + mobileUserColumns + ` FROM mobile_users`
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

	var users []*models.MobileUser
	for rows.Next() {
		u, err := scanMobileUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
