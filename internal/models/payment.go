package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Valid reports whether the payment status is one of the known values
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment represents a billing record for an institution
type Payment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	InstitutionID uuid.UUID  `json:"institutionId" db:"institution_id"`
	LicenseID     *uuid.UUID `json:"licenseId,omitempty" db:"license_id"`

	// Amount in KRW
	Amount int64  `json:"amount" db:"amount"`
	Method string `json:"method" db:"method"`

	Status      PaymentStatus `json:"status" db:"status"`
	PaidAt      *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	Description string        `json:"description,omitempty" db:"description"`
}
