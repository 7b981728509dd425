package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

const paymentColumns = `
	id, created_at, updated_at, institution_id, license_id, amount, method,
	status, paid_at, description`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.InstitutionID, &p.LicenseID,
		&p.Amount, &p.Method, &p.Status, &p.PaidAt, &p.Description,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// CreatePayment creates a payment and bumps the owning institution's
// payment counter.
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	query := `
		INSERT INTO payments (
			id, created_at, updated_at, institution_id, license_id, amount,
			method, status, paid_at, description
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := s.db.ExecContext(ctx, query,
		payment.ID, payment.CreatedAt, payment.UpdatedAt,
		payment.InstitutionID, payment.LicenseID, payment.Amount,
		payment.Method, payment.Status, payment.PaidAt, payment.Description,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE institutions SET payment_count = payment_count + 1 WHERE id = $1`,
		payment.InstitutionID)
	return err
}

// GetPayment gets a payment by ID
func (s *PostgresStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(s.db.QueryRowContext(ctx, query, id))
}

// UpdatePayment updates a payment
func (s *PostgresStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now()

	query := `
		UPDATE payments SET
			updated_at = $2, license_id = $3, amount = $4, method = $5,
			status = $6, paid_at = $7, description = $8
		WHERE id = $1`

	return s.execExpectingRow(ctx, query,
		payment.ID, payment.UpdatedAt, payment.LicenseID, payment.Amount,
		payment.Method, payment.Status, payment.PaidAt, payment.Description,
	)
}

// DeletePayment deletes a payment
func (s *PostgresStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	if err := s.execExpectingRow(ctx, "DELETE FROM payments WHERE id = $1", id); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE institutions SET payment_count = payment_count - 1
		 WHERE id = $1 AND payment_count > 0`,
		payment.InstitutionID)
	return err
}

// ListPayments lists payments, optionally scoped to an institution
func (s *PostgresStore) ListPayments(ctx context.Context, institutionID *uuid.UUID) ([]*models.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments`
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

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
