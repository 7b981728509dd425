package models

import (
	"time"

	"github.com/google/uuid"
)

// EventLog represents an audit log entry written for every mutation
type EventLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	InstitutionID *uuid.UUID `json:"institutionId,omitempty" db:"institution_id"`
	EntityID      *uuid.UUID `json:"entityId,omitempty" db:"entity_id"`

	Type        EventType  `json:"type" db:"type"`
	Level       EventLevel `json:"level" db:"level"`
	Description string     `json:"description" db:"description"`

	Details Variables `json:"details,omitempty" db:"details"`
}

// EventType represents event types
type EventType string

const (
	// Institution events
	EventTypeInstitutionCreated  EventType = "INSTITUTION_CREATED"
	EventTypeInstitutionUpdated  EventType = "INSTITUTION_UPDATED"
	EventTypeInstitutionApproved EventType = "INSTITUTION_APPROVED"
	EventTypeInstitutionDeleted  EventType = "INSTITUTION_DELETED"
	EventTypeLicenseChanged      EventType = "LICENSE_CHANGED"

	// Entity events
	EventTypeLicenseCreated    EventType = "LICENSE_CREATED"
	EventTypePaymentCreated    EventType = "PAYMENT_CREATED"
	EventTypePaymentUpdated    EventType = "PAYMENT_UPDATED"
	EventTypeMobileUserCreated EventType = "MOBILE_USER_CREATED"
	EventTypePhotoUploaded     EventType = "PHOTO_UPLOADED"
	EventTypeReportCreated     EventType = "REPORT_CREATED"

	// System events
	EventTypeLogin EventType = "LOGIN"
	EventTypeError EventType = "ERROR"
)

// EventLevel represents event severity levels
type EventLevel string

const (
	EventLevelDebug   EventLevel = "DEBUG"
	EventLevelInfo    EventLevel = "INFO"
	EventLevelWarning EventLevel = "WARNING"
	EventLevelError   EventLevel = "ERROR"
)

// Subject returns the NATS subject for the event, e.g.
// "admin.institution.approved".
func (t EventType) Subject() string {
	switch t {
	case EventTypeInstitutionCreated:
		return "admin.institution.created"
	case EventTypeInstitutionUpdated:
		return "admin.institution.updated"
	case EventTypeInstitutionApproved:
		return "admin.institution.approved"
	case EventTypeInstitutionDeleted:
		return "admin.institution.deleted"
	case EventTypeLicenseChanged:
		return "admin.institution.license"
	case EventTypeLicenseCreated:
		return "admin.license.created"
	case EventTypePaymentCreated:
		return "admin.payment.created"
	case EventTypePaymentUpdated:
		return "admin.payment.updated"
	case EventTypeMobileUserCreated:
		return "admin.mobileuser.created"
	case EventTypePhotoUploaded:
		return "admin.photo.uploaded"
	case EventTypeReportCreated:
		return "admin.report.created"
	case EventTypeLogin:
		return "admin.auth.login"
	default:
		return "admin.event"
	}
}
