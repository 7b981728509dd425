package models

import (
	"time"

	"github.com/google/uuid"
)

// MobileUserStatus represents the account state of a mobile app user
type MobileUserStatus string

const (
	MobileUserActive    MobileUserStatus = "active"
	MobileUserInactive  MobileUserStatus = "inactive"
	MobileUserWithdrawn MobileUserStatus = "withdrawn"
)

// Valid reports whether the status is one of the known values
func (s MobileUserStatus) Valid() bool {
	switch s {
	case MobileUserActive, MobileUserInactive, MobileUserWithdrawn:
		return true
	}
	return false
}

// MobileUser represents an end user of the mobile diagnosis app,
// attached to the institution that registered them.
type MobileUser struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	InstitutionID uuid.UUID `json:"institutionId" db:"institution_id"`

	Name  string `json:"name" db:"name"`
	Phone string `json:"phone,omitempty" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	BirthYear int    `json:"birthYear,omitempty" db:"birth_year"`
	Gender    string `json:"gender,omitempty" db:"gender"`

	Status MobileUserStatus `json:"status" db:"status"`

	LastDiagnosisAt *time.Time `json:"lastDiagnosisAt,omitempty" db:"last_diagnosis_at"`

	PhotoCount  int `json:"photoCount" db:"photo_count"`
	ReportCount int `json:"reportCount" db:"report_count"`
}
