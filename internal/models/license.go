package models

import (
	"time"

	"github.com/google/uuid"
)

// License represents a time-bounded entitlement scoping an institution's
// seat usage. Licenses are stored independently of the institution record;
// approving an institution does not create a license.
type License struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	InstitutionID uuid.UUID `json:"institutionId" db:"institution_id"`

	Status    LicenseStatus `json:"status" db:"status"`
	Plan      string        `json:"plan" db:"plan"`
	SeatLimit int           `json:"seatLimit" db:"seat_limit"`

	StartsAt  time.Time  `json:"startsAt" db:"starts_at"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" db:"expires_at"`

	Notes string `json:"notes,omitempty" db:"notes"`
}
