package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InstitutionCategory represents the kind of tenant institution
type InstitutionCategory string

const (
	CategoryClinic             InstitutionCategory = "clinic"
	CategoryUniversityHospital InstitutionCategory = "university_hospital"
	CategoryResearchLab        InstitutionCategory = "research_lab"
	CategoryHairSalon          InstitutionCategory = "hair_salon"
	CategoryOther              InstitutionCategory = "other"
)

// Valid reports whether the category is one of the known values
func (c InstitutionCategory) Valid() bool {
	switch c {
	case CategoryClinic, CategoryUniversityHospital, CategoryResearchLab, CategoryHairSalon, CategoryOther:
		return true
	}
	return false
}

// InstitutionStatus represents the approval state of an institution.
// The only modeled transition is pending -> approved; approved is terminal.
type InstitutionStatus string

const (
	InstitutionPending  InstitutionStatus = "pending"
	InstitutionApproved InstitutionStatus = "approved"
)

// LicenseStatus represents the license state of an institution.
// The display label is derived via Label; only the enum is stored.
type LicenseStatus string

const (
	LicenseNone    LicenseStatus = "none"
	LicenseTrial   LicenseStatus = "trial"
	LicenseActive  LicenseStatus = "active"
	LicenseExpired LicenseStatus = "expired"
)

// Valid reports whether the license status is one of the known values
func (s LicenseStatus) Valid() bool {
	switch s {
	case LicenseNone, LicenseTrial, LicenseActive, LicenseExpired:
		return true
	}
	return false
}

// Label returns the display label for the license status
func (s LicenseStatus) Label() string {
	switch s {
	case LicenseTrial:
		return "무료체험"
	case LicenseActive:
		return "정식 라이선스"
	case LicenseExpired:
		return "정식 라이선스 (만료)"
	default:
		return "-"
	}
}

// SeatUsage tracks consumed versus licensed seats
type SeatUsage struct {
	Current int `json:"current"`
	Limit   int `json:"limit"`
}

// Institution represents a clinic/hospital/salon tenant of the platform
type Institution struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Version increments on every update; updates carrying a stale
	// version are rejected with ErrConflict.
	Version int64 `json:"version" db:"version"`

	Name      string              `json:"name" db:"name"`
	LegalName string              `json:"legalName,omitempty" db:"legal_name"`
	Category  InstitutionCategory `json:"category" db:"category"`

	Representative      string `json:"representative" db:"representative"`
	RepresentativePhone string `json:"representativePhone,omitempty" db:"representative_phone"`
	RepresentativeEmail string `json:"representativeEmail,omitempty" db:"representative_email"`

	BusinessNumber string `json:"businessNumber" db:"business_number"`
	CertificateURL string `json:"certificateUrl,omitempty" db:"certificate_url"`

	Address       string `json:"address,omitempty" db:"address"`
	AddressDetail string `json:"addressDetail,omitempty" db:"address_detail"`
	PostalCode    string `json:"postalCode,omitempty" db:"postal_code"`

	Phone string `json:"phone,omitempty" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	RegistrationDate time.Time         `json:"registrationDate" db:"registration_date"`
	Status           InstitutionStatus `json:"status" db:"status"`

	LicenseStatus LicenseStatus `json:"licenseStatus" db:"license_status"`
	LicenseExpiry *time.Time    `json:"licenseExpiry,omitempty" db:"license_expiry"`

	UsersCount SeatUsage `json:"usersCount"`

	// Aggregate counters maintained by the store
	PaymentCount    int `json:"paymentCount" db:"payment_count"`
	PhotoCount      int `json:"photoCount" db:"photo_count"`
	ReportCount     int `json:"reportCount" db:"report_count"`
	MobileUserCount int `json:"mobileUserCount" db:"mobile_user_count"`
}

// MarshalJSON adds the derived licenseType label so API consumers never
// see the enum and its label drift apart.
func (i Institution) MarshalJSON() ([]byte, error) {
	type alias Institution
	return json.Marshal(struct {
		alias
		LicenseType string `json:"licenseType"`
	}{
		alias:       alias(i),
		LicenseType: i.LicenseStatus.Label(),
	})
}
