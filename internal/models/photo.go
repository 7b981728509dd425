package models

import (
	"time"

	"github.com/google/uuid"
)

// PhotoStatus represents the analysis state of an uploaded scalp photo
type PhotoStatus string

const (
	PhotoUploaded  PhotoStatus = "uploaded"
	PhotoAnalyzing PhotoStatus = "analyzing"
	PhotoAnalyzed  PhotoStatus = "analyzed"
	PhotoFailed    PhotoStatus = "failed"
)

// Valid reports whether the photo status is one of the known values
func (s PhotoStatus) Valid() bool {
	switch s {
	case PhotoUploaded, PhotoAnalyzing, PhotoAnalyzed, PhotoFailed:
		return true
	}
	return false
}

// Photo represents the metadata of an uploaded scalp photo. The binary
// lives in external storage; only the URL is tracked here.
type Photo struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	InstitutionID uuid.UUID `json:"institutionId" db:"institution_id"`
	MobileUserID  uuid.UUID `json:"mobileUserId" db:"mobile_user_id"`

	URL      string `json:"url" db:"url"`
	Filename string `json:"filename" db:"filename"`

	// Scalp region the photo covers (crown, hairline, temples, ...)
	Region string `json:"region,omitempty" db:"region"`

	SizeBytes int64     `json:"sizeBytes,omitempty" db:"size_bytes"`
	TakenAt   time.Time `json:"takenAt" db:"taken_at"`

	Status PhotoStatus `json:"status" db:"status"`
}
