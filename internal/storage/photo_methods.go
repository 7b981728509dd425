package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

const photoColumns = `
	id, created_at, updated_at, institution_id, mobile_user_id, url,
	filename, region, size_bytes, taken_at, status`

func scanPhoto(row interface{ Scan(...interface{}) error }) (*models.Photo, error) {
	p := &models.Photo{}
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.InstitutionID, &p.MobileUserID,
		&p.URL, &p.Filename, &p.Region, &p.SizeBytes, &p.TakenAt, &p.Status,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// CreatePhoto creates a photo record and bumps counters
func (s *PostgresStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}

	now := time.Now()
	photo.CreatedAt = now
	photo.UpdatedAt = now
	if photo.Status == "" {
		photo.Status = models.PhotoUploaded
	}

	query := `
		INSERT INTO photos (
			id, created_at, updated_at, institution_id, mobile_user_id, url,
			filename, region, size_bytes, taken_at, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := s.db.ExecContext(ctx, query,
		photo.ID, photo.CreatedAt, photo.UpdatedAt, photo.InstitutionID,
		photo.MobileUserID, photo.URL, photo.Filename, photo.Region,
		photo.SizeBytes, photo.TakenAt, photo.Status,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE institutions SET photo_count = photo_count + 1 WHERE id = $1`,
		photo.InstitutionID); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE mobile_users SET photo_count = photo_count + 1 WHERE id = $1`,
		photo.MobileUserID)
	return err
}

// GetPhoto gets a photo record by ID
func (s *PostgresStore) GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	query := `SELECT` + photoColumns + ` FROM photos WHERE id = $1`
	return scanPhoto(s.db.QueryRowContext(ctx, query, id))
}

// UpdatePhoto updates a photo record
func (s *PostgresStore) UpdatePhoto(ctx context.Context, photo *models.Photo) error {
	photo.UpdatedAt = time.Now()

	query := `
		UPDATE photos SET
			updated_at = $2, url = $3, filename = $4, region = $5,
			size_bytes = $6, taken_at = $7, status = $8
		WHERE id = $1`

	return s.execExpectingRow(ctx, query,
		photo.ID, photo.UpdatedAt, photo.URL, photo.Filename, photo.Region,
		photo.SizeBytes, photo.TakenAt, photo.Status,
	)
}

// DeletePhoto deletes a photo record
func (s *PostgresStore) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	photo, err := s.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	if err := s.execExpectingRow(ctx, "DELETE FROM photos WHERE id = $1", id); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE institutions SET photo_count = GREATEST(photo_count - 1, 0)
		 WHERE id = $1`,
		photo.InstitutionID)
	return err
}

// ListPhotos lists photo records, optionally scoped
func (s *PostgresStore) ListPhotos(ctx context.Context, institutionID *uuid.UUID, mobileUserID *uuid.UUID) ([]*models.Photo, error) {
	query := `SELECT` + photoColumns + ` FROM photos`
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

	var photos []*models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	return photos, rows.Err()
}
