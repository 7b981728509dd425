package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus represents the publication state of a diagnostic report
type ReportStatus string

const (
	ReportDraft  ReportStatus = "draft"
	ReportIssued ReportStatus = "issued"
)

// Valid reports whether the report status is one of the known values
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportDraft, ReportIssued:
		return true
	}
	return false
}

// Report represents a hair-loss diagnostic report produced for a mobile
// user, optionally linked to the photo it was derived from.
type Report struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	InstitutionID uuid.UUID  `json:"institutionId" db:"institution_id"`
	MobileUserID  uuid.UUID  `json:"mobileUserId" db:"mobile_user_id"`
	PhotoID       *uuid.UUID `json:"photoId,omitempty" db:"photo_id"`

	Title   string `json:"title" db:"title"`
	Summary string `json:"summary,omitempty" db:"summary"`

	// Norwood-Hamilton stage, 1-7
	Stage int `json:"stage,omitempty" db:"stage"`

	Status   ReportStatus `json:"status" db:"status"`
	IssuedAt *time.Time   `json:"issuedAt,omitempty" db:"issued_at"`
}
