package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/filter"
	"github.com/hairscan/hairscan-admin/internal/models"
)

const institutionColumns = `
	id, created_at, updated_at, version, name, legal_name, category,
	representative, representative_phone, representative_email,
	business_number, certificate_url, address, address_detail, postal_code,
	phone, email, registration_date, status, license_status, license_expiry,
	seat_current, seat_limit, payment_count, photo_count, report_count,
	mobile_user_count`

func scanInstitution(row interface{ Scan(...interface{}) error }) (*models.Institution, error) {
	inst := &models.Institution{}
	err := row.Scan(
		&inst.ID, &inst.CreatedAt, &inst.UpdatedAt, &inst.Version,
		&inst.Name, &inst.LegalName, &inst.Category,
		&inst.Representative, &inst.RepresentativePhone, &inst.RepresentativeEmail,
		&inst.BusinessNumber, &inst.CertificateURL,
		&inst.Address, &inst.AddressDetail, &inst.PostalCode,
		&inst.Phone, &inst.Email,
		&inst.RegistrationDate, &inst.Status,
		&inst.LicenseStatus, &inst.LicenseExpiry,
		&inst.UsersCount.Current, &inst.UsersCount.Limit,
		&inst.PaymentCount, &inst.PhotoCount, &inst.ReportCount, &inst.MobileUserCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return inst, err
}

// CreateInstitution creates a new institution
func (s *PostgresStore) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}

	now := time.Now()
	inst.CreatedAt = now
	inst.UpdatedAt = now
	inst.Version = 1
	if inst.Status == "" {
		inst.Status = models.InstitutionPending
	}
	if inst.LicenseStatus == "" {
		inst.LicenseStatus = models.LicenseNone
	}

	query := `
		INSERT INTO institutions (
			id, created_at, updated_at, version, name, legal_name, category,
			representative, representative_phone, representative_email,
			business_number, certificate_url, address, address_detail,
			postal_code, phone, email, registration_date, status,
			license_status, license_expiry, seat_current, seat_limit,
			payment_count, photo_count, report_count, mobile_user_count
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)`

	_, err := s.db.ExecContext(ctx, query,
		inst.ID, inst.CreatedAt, inst.UpdatedAt, inst.Version,
		inst.Name, inst.LegalName, inst.Category,
		inst.Representative, inst.RepresentativePhone, inst.RepresentativeEmail,
		inst.BusinessNumber, inst.CertificateURL,
		inst.Address, inst.AddressDetail, inst.PostalCode,
		inst.Phone, inst.Email,
		inst.RegistrationDate, inst.Status,
		inst.LicenseStatus, inst.LicenseExpiry,
		inst.UsersCount.Current, inst.UsersCount.Limit,
		inst.PaymentCount, inst.PhotoCount, inst.ReportCount, inst.MobileUserCount,
	)

	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetInstitution gets an institution by ID
func (s *PostgresStore) GetInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	query := `SELECT` + institutionColumns + ` FROM institutions WHERE id = $1`
	return scanInstitution(s.db.QueryRowContext(ctx, query, id))
}

// UpdateInstitution updates an institution. The WHERE clause includes the
// supplied version; a stale version affects no rows and is reported as
// ErrConflict when the record itself still exists.
func (s *PostgresStore) UpdateInstitution(ctx context.Context, inst *models.Institution) error {
	inst.UpdatedAt = time.Now()

	query := `
		UPDATE institutions SET
			updated_at = $3, version = version + 1, name = $4, legal_name = $5,
			category = $6, representative = $7, representative_phone = $8,
			representative_email = $9, business_number = $10,
			certificate_url = $11, address = $12, address_detail = $13,
			postal_code = $14, phone = $15, email = $16,
			registration_date = $17, status = $18, license_status = $19,
			license_expiry = $20, seat_current = $21, seat_limit = $22
		WHERE id = $1 AND version = $2`

	result, err := s.db.ExecContext(ctx, query,
		inst.ID, inst.Version, inst.UpdatedAt,
		inst.Name, inst.LegalName, inst.Category,
		inst.Representative, inst.RepresentativePhone, inst.RepresentativeEmail,
		inst.BusinessNumber, inst.CertificateURL,
		inst.Address, inst.AddressDetail, inst.PostalCode,
		inst.Phone, inst.Email,
		inst.RegistrationDate, inst.Status,
		inst.LicenseStatus, inst.LicenseExpiry,
		inst.UsersCount.Current, inst.UsersCount.Limit,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.GetInstitution(ctx, inst.ID); err == ErrNotFound {
			return ErrNotFound
		}
		return ErrConflict
	}

	inst.Version++
	return nil
}

// DeleteInstitution deletes an institution permanently
func (s *PostgresStore) DeleteInstitution(ctx context.Context, id uuid.UUID) error {
	return s.execExpectingRow(ctx, "DELETE FROM institutions WHERE id = $1", id)
}

// ListInstitutions lists institutions matching the criteria, in
// registration order. The SQL mirrors filter.Institutions: name, category
// and representative match case-insensitively, contact channels and the
// business number as-is.
func (s *PostgresStore) ListInstitutions(ctx context.Context, criteria filter.Criteria) ([]*models.Institution, error) {
	query := `SELECT` + institutionColumns + ` FROM institutions`

	var conds []string
	var args []interface{}

	if criteria.RegisteredAfter != nil {
		args = append(args, *criteria.RegisteredAfter)
		conds = append(conds, fmt.Sprintf("registration_date >= $%d", len(args)))
	}
	if criteria.RegisteredBefore != nil {
		args = append(args, *criteria.RegisteredBefore)
		conds = append(conds, fmt.Sprintf("registration_date <= $%d", len(args)))
	}
	if criteria.Search != "" {
		args = append(args, "%"+criteria.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(name ILIKE $%d OR category ILIKE $%d OR representative ILIKE $%d
			  OR phone LIKE $%d OR email LIKE $%d OR business_number LIKE $%d)`,
			n, n, n, n, n, n))
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

	var insts []*models.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}

	return insts, rows.Err()
}

// ApproveInstitution sets the status to approved and returns the record.
// Idempotent: an already approved institution is returned unchanged.
func (s *PostgresStore) ApproveInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	query := `
		UPDATE institutions SET
			status = $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND status <> $2`

	if _, err := s.db.ExecContext(ctx, query, id, models.InstitutionApproved, time.Now()); err != nil {
		return nil, err
	}

	return s.GetInstitution(ctx, id)
}

// SetInstitutionLicense sets license status and expiry together
func (s *PostgresStore) SetInstitutionLicense(ctx context.Context, id uuid.UUID, status models.LicenseStatus, expiry *time.Time) (*models.Institution, error) {
	query := `
		UPDATE institutions SET
			license_status = $2, license_expiry = $3, updated_at = $4,
			version = version + 1
		WHERE id = $1`

	err := s.execExpectingRow(ctx, query, id, status, expiry, time.Now())
	if err != nil {
		return nil, err
	}

	return s.GetInstitution(ctx, id)
}
