package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/filter"
	"github.com/hairscan/hairscan-admin/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConflict is returned when an update carries a stale version
	ErrConflict = errors.New("version conflict")
)

// Store defines the storage interface. It is the single source of truth
// for all dashboard entities and the only component permitted to mutate
// them.
type Store interface {
	// Admin user methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Institution methods
	CreateInstitution(ctx context.Context, inst *models.Institution) error
	GetInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error)
	UpdateInstitution(ctx context.Context, inst *models.Institution) error
	DeleteInstitution(ctx context.Context, id uuid.UUID) error
	ListInstitutions(ctx context.Context, criteria filter.Criteria) ([]*models.Institution, error)
	ApproveInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error)
	SetInstitutionLicense(ctx context.Context, id uuid.UUID, status models.LicenseStatus, expiry *time.Time) (*models.Institution, error)

	// License methods
	CreateLicense(ctx context.Context, lic *models.License) error
	GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error)
	UpdateLicense(ctx context.Context, lic *models.License) error
	DeleteLicense(ctx context.Context, id uuid.UUID) error
	ListLicenses(ctx context.Context, institutionID *uuid.UUID) ([]*models.License, error)

	// Payment methods
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	DeletePayment(ctx context.Context, id uuid.UUID) error
	ListPayments(ctx context.Context, institutionID *uuid.UUID) ([]*models.Payment, error)

	// Mobile user methods
	CreateMobileUser(ctx context.Context, user *models.MobileUser) error
	GetMobileUser(ctx context.Context, id uuid.UUID) (*models.MobileUser, error)
	UpdateMobileUser(ctx context.Context, user *models.MobileUser) error
	DeleteMobileUser(ctx context.Context, id uuid.UUID) error
	ListMobileUsers(ctx context.Context, institutionID *uuid.UUID) ([]*models.MobileUser, error)

	// Photo methods
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, photo *models.Photo) error
	DeletePhoto(ctx context.Context, id uuid.UUID) error
	ListPhotos(ctx context.Context, institutionID *uuid.UUID, mobileUserID *uuid.UUID) ([]*models.Photo, error)

	// Report methods
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	UpdateReport(ctx context.Context, report *models.Report) error
	DeleteReport(ctx context.Context, id uuid.UUID) error
	ListReports(ctx context.Context, institutionID *uuid.UUID, mobileUserID *uuid.UUID) ([]*models.Report, error)

	// Event log methods
	CreateEventLog(ctx context.Context, event *models.EventLog) error
	ListEventLogs(ctx context.Context, filters EventLogFilters, limit, offset int) ([]*models.EventLog, int64, error)

	// Close the store
	Close() error
}

// EventLogFilters represents filters for event logs
type EventLogFilters struct {
	InstitutionID *uuid.UUID
	Type          *models.EventType
	Level         *models.EventLevel
	StartTime     *time.Time
	EndTime       *time.Time
}
