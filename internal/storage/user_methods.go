package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

const userColumns = `
	id, created_at, updated_at, email, name, password_hash,
	is_admin, is_active, last_login_at, settings`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
		&user.Email, &user.Name, &user.PasswordHash,
		&user.IsAdmin, &user.IsActive, &user.LastLoginAt, &user.Settings,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return user, err
}

// CreateUser creates a new admin user
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, created_at, updated_at, email, name, password_hash,
			is_admin, is_active, last_login_at, settings
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Email, user.Name,
		user.PasswordHash, user.IsAdmin, user.IsActive, user.LastLoginAt,
		user.Settings,
	)

	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetUser gets an admin user by ID
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail gets an admin user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// UpdateUser updates an admin user
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			updated_at = $2, email = $3, name = $4, password_hash = $5,
			is_admin = $6, is_active = $7, last_login_at = $8, settings = $9
		WHERE id = $1`

	return s.execExpectingRow(ctx, query,
		user.ID, user.UpdatedAt, user.Email, user.Name, user.PasswordHash,
		user.IsAdmin, user.IsActive, user.LastLoginAt, user.Settings,
	)
}

// DeleteUser deletes an admin user
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.execExpectingRow(ctx, "DELETE FROM users WHERE id = $1", id)
}

// ListUsers lists admin users
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
