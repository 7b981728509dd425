package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/filter"
	"github.com/hairscan/hairscan-admin/internal/models"
)

// MemoryStore is an in-memory Store used in development mode and tests.
// Records are held in insertion-ordered slices and copied on every read
// and write, so callers never share memory with the store.
type MemoryStore struct {
	mu sync.RWMutex

	users        []*models.User
	institutions []*models.Institution
	licenses     []*models.License
	payments     []*models.Payment
	mobileUsers  []*models.MobileUser
	photos       []*models.Photo
	reports      []*models.Report
	events       []*models.EventLog
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneVariables(v models.Variables) models.Variables {
	if v == nil {
		return nil
	}
	c := make(models.Variables, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// ========== Admin user methods ==========

func cloneUser(u *models.User) *models.User {
	c := *u
	c.LastLoginAt = cloneTime(u.LastLoginAt)
	c.Settings = cloneVariables(u.Settings)
	return &c
}

// CreateUser creates an admin user
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateKey
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.users = append(s.users, cloneUser(user))
	return nil
}

// GetUser gets an admin user by ID
func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByEmail gets an admin user by email
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateUser updates an admin user
func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == user.ID {
			user.CreatedAt = u.CreatedAt
			user.UpdatedAt = time.Now()
			s.users[i] = cloneUser(user)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteUser deletes an admin user
func (s *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListUsers lists admin users in insertion order
func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

// ========== Institution methods ==========

func cloneInstitution(inst *models.Institution) *models.Institution {
	c := *inst
	c.LicenseExpiry = cloneTime(inst.LicenseExpiry)
	return &c
}

// CreateInstitution creates an institution
func (s *MemoryStore) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inst.BusinessNumber != "" {
		for _, i := range s.institutions {
			if i.BusinessNumber == inst.BusinessNumber {
				return ErrDuplicateKey
			}
		}
	}

	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	now := time.Now()
	inst.CreatedAt = now
	inst.UpdatedAt = now
	inst.Version = 1
	if inst.Status == "" {
		inst.Status = models.InstitutionPending
	}
	if inst.LicenseStatus == "" {
		inst.LicenseStatus = models.LicenseNone
	}

	s.institutions = append(s.institutions, cloneInstitution(inst))
	return nil
}

// GetInstitution gets an institution by ID
func (s *MemoryStore) GetInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inst := range s.institutions {
		if inst.ID == id {
			return cloneInstitution(inst), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateInstitution replaces the stored record if the supplied version
// matches, then increments the version. A stale version yields
// ErrConflict and mutates nothing.
func (s *MemoryStore) UpdateInstitution(ctx context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.institutions {
		if cur.ID != inst.ID {
			continue
		}
		if cur.Version != inst.Version {
			return ErrConflict
		}
		inst.CreatedAt = cur.CreatedAt
		inst.UpdatedAt = time.Now()
		inst.Version = cur.Version + 1
		s.institutions[i] = cloneInstitution(inst)
		return nil
	}
	return ErrNotFound
}

// DeleteInstitution removes an institution permanently
func (s *MemoryStore) DeleteInstitution(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, inst := range s.institutions {
		if inst.ID == id {
			s.institutions = append(s.institutions[:i], s.institutions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListInstitutions lists institutions matching the criteria, in
// insertion order.
func (s *MemoryStore) ListInstitutions(ctx context.Context, criteria filter.Criteria) ([]*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.institutions
	if !criteria.Empty() {
		matched = filter.Institutions(s.institutions, criteria)
	}
	out := make([]*models.Institution, 0, len(matched))
	for _, inst := range matched {
		out = append(out, cloneInstitution(inst))
	}
	return out, nil
}

// ApproveInstitution sets the status to approved. Approving an already
// approved institution is a no-op that still succeeds.
func (s *MemoryStore) ApproveInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, inst := range s.institutions {
		if inst.ID != id {
			continue
		}
		if inst.Status != models.InstitutionApproved {
			c := cloneInstitution(inst)
			c.Status = models.InstitutionApproved
			c.UpdatedAt = time.Now()
			c.Version = inst.Version + 1
			s.institutions[i] = c
		}
		return cloneInstitution(s.institutions[i]), nil
	}
	return nil, ErrNotFound
}

// SetInstitutionLicense sets the license status and expiry together
func (s *MemoryStore) SetInstitutionLicense(ctx context.Context, id uuid.UUID, status models.LicenseStatus, expiry *time.Time) (*models.Institution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, inst := range s.institutions {
		if inst.ID != id {
			continue
		}
		c := cloneInstitution(inst)
		c.LicenseStatus = status
		c.LicenseExpiry = cloneTime(expiry)
		c.UpdatedAt = time.Now()
		c.Version = inst.Version + 1
		s.institutions[i] = c
		return cloneInstitution(c), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) findInstitution(id uuid.UUID) *models.Institution {
	for _, inst := range s.institutions {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

// ========== License methods ==========

func cloneLicense(lic *models.License) *models.License {
	c := *lic
	c.ExpiresAt = cloneTime(lic.ExpiresAt)
	return &c
}

// CreateLicense creates a license
func (s *MemoryStore) CreateLicense(ctx context.Context, lic *models.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lic.ID == uuid.Nil {
		lic.ID = uuid.New()
	}
	now := time.Now()
	lic.CreatedAt = now
	lic.UpdatedAt = now

	s.licenses = append(s.licenses, cloneLicense(lic))
	return nil
}

// GetLicense gets a license by ID
func (s *MemoryStore) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, lic := range s.licenses {
		if lic.ID == id {
			return cloneLicense(lic), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateLicense updates a license
func (s *MemoryStore) UpdateLicense(ctx context.Context, lic *models.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.licenses {
		if cur.ID == lic.ID {
			lic.CreatedAt = cur.CreatedAt
			lic.UpdatedAt = time.Now()
			s.licenses[i] = cloneLicense(lic)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteLicense deletes a license
func (s *MemoryStore) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, lic := range s.licenses {
		if lic.ID == id {
			s.licenses = append(s.licenses[:i], s.licenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListLicenses lists licenses, optionally scoped to an institution
func (s *MemoryStore) ListLicenses(ctx context.Context, institutionID *uuid.UUID) ([]*models.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.License, 0, len(s.licenses))
	for _, lic := range s.licenses {
		if institutionID != nil && lic.InstitutionID != *institutionID {
			continue
		}
		out = append(out, cloneLicense(lic))
	}
	return out, nil
}

// ========== Payment methods ==========

func clonePayment(p *models.Payment) *models.Payment {
	c := *p
	c.LicenseID = cloneUUID(p.LicenseID)
	c.PaidAt = cloneTime(p.PaidAt)
	return &c
}

// CreatePayment creates a payment and bumps the owning institution's
// payment counter.
func (s *MemoryStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	s.payments = append(s.payments, clonePayment(payment))
	if inst := s.findInstitution(payment.InstitutionID); inst != nil {
		inst.PaymentCount++
	}
	return nil
}

// GetPayment gets a payment by ID
func (s *MemoryStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.ID == id {
			return clonePayment(p), nil
		}
	}
	return nil, ErrNotFound
}

// UpdatePayment updates a payment
func (s *MemoryStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.payments {
		if cur.ID == payment.ID {
			payment.CreatedAt = cur.CreatedAt
			payment.UpdatedAt = time.Now()
			s.payments[i] = clonePayment(payment)
			return nil
		}
	}
	return ErrNotFound
}

// DeletePayment deletes a payment
func (s *MemoryStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.payments {
		if p.ID == id {
			if inst := s.findInstitution(p.InstitutionID); inst != nil && inst.PaymentCount > 0 {
				inst.PaymentCount--
			}
			s.payments = append(s.payments[:i], s.payments[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListPayments lists payments, optionally scoped to an institution
func (s *MemoryStore) ListPayments(ctx context.Context, institutionID *uuid.UUID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if institutionID != nil && p.InstitutionID != *institutionID {
			continue
		}
		out = append(out, clonePayment(p))
	}
	return out, nil
}

// ========== Mobile user methods ==========

func cloneMobileUser(u *models.MobileUser) *models.MobileUser {
	c := *u
	c.LastDiagnosisAt = cloneTime(u.LastDiagnosisAt)
	return &c
}

// CreateMobileUser creates a mobile user and bumps the owning
// institution's counters.
func (s *MemoryStore) CreateMobileUser(ctx context.Context, user *models.MobileUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = models.MobileUserActive
	}

	s.mobileUsers = append(s.mobileUsers, cloneMobileUser(user))
	if inst := s.findInstitution(user.InstitutionID); inst != nil {
		inst.MobileUserCount++
		inst.UsersCount.Current++
	}
	return nil
}

// GetMobileUser gets a mobile user by ID
func (s *MemoryStore) GetMobileUser(ctx context.Context, id uuid.UUID) (*models.MobileUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.mobileUsers {
		if u.ID == id {
			return cloneMobileUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateMobileUser updates a mobile user
func (s *MemoryStore) UpdateMobileUser(ctx context.Context, user *models.MobileUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.mobileUsers {
		if cur.ID == user.ID {
			user.CreatedAt = cur.CreatedAt
			user.UpdatedAt = time.Now()
			s.mobileUsers[i] = cloneMobileUser(user)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteMobileUser deletes a mobile user
func (s *MemoryStore) DeleteMobileUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.mobileUsers {
		if u.ID == id {
			if inst := s.findInstitution(u.InstitutionID); inst != nil {
				if inst.MobileUserCount > 0 {
					inst.MobileUserCount--
				}
				if inst.UsersCount.Current > 0 {
					inst.UsersCount.Current--
				}
			}
			s.mobileUsers = append(s.mobileUsers[:i], s.mobileUsers[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListMobileUsers lists mobile users, optionally scoped to an institution
func (s *MemoryStore) ListMobileUsers(ctx context.Context, institutionID *uuid.UUID) ([]*models.MobileUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.MobileUser, 0, len(s.mobileUsers))
	for _, u := range s.mobileUsers {
		if institutionID != nil && u.InstitutionID != *institutionID {
			continue
		}
		out = append(out, cloneMobileUser(u))
	}
	return out, nil
}

// ========== Photo methods ==========

func clonePhoto(p *models.Photo) *models.Photo {
	c := *p
	return &c
}

// CreatePhoto creates a photo record and bumps counters
func (s *MemoryStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	now := time.Now()
	photo.CreatedAt = now
	photo.UpdatedAt = now
	if photo.Status == "" {
		photo.Status = models.PhotoUploaded
	}

	s.photos = append(s.photos, clonePhoto(photo))
	if inst := s.findInstitution(photo.InstitutionID); inst != nil {
		inst.PhotoCount++
	}
	for _, u := range s.mobileUsers {
		if u.ID == photo.MobileUserID {
			u.PhotoCount++
			break
		}
	}
	return nil
}

// GetPhoto gets a photo by ID
func (s *MemoryStore) GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.photos {
		if p.ID == id {
			return clonePhoto(p), nil
		}
	}
	return nil, ErrNotFound
}

// UpdatePhoto updates a photo record
func (s *MemoryStore) UpdatePhoto(ctx context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.photos {
		if cur.ID == photo.ID {
			photo.CreatedAt = cur.CreatedAt
			photo.UpdatedAt = time.Now()
			s.photos[i] = clonePhoto(photo)
			return nil
		}
	}
	return ErrNotFound
}

// DeletePhoto deletes a photo record
func (s *MemoryStore) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.photos {
		if p.ID == id {
			if inst := s.findInstitution(p.InstitutionID); inst != nil && inst.PhotoCount > 0 {
				inst.PhotoCount--
			}
			s.photos = append(s.photos[:i], s.photos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListPhotos lists photo records, optionally scoped
func (s *MemoryStore) ListPhotos(ctx context.Context, institutionID *uuid.UUID, mobileUserID *uuid.UUID) ([]*models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Photo, 0, len(s.photos))
	for _, p := range s.photos {
		if institutionID != nil && p.InstitutionID != *institutionID {
			continue
		}
		if mobileUserID != nil && p.MobileUserID != *mobileUserID {
			continue
		}
		out = append(out, clonePhoto(p))
	}
	return out, nil
}

// ========== Report methods ==========

func cloneReport(r *models.Report) *models.Report {
	c := *r
	c.PhotoID = cloneUUID(r.PhotoID)
	c.IssuedAt = cloneTime(r.IssuedAt)
	return &c
}

// CreateReport creates a report and bumps counters
func (s *MemoryStore) CreateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = models.ReportDraft
	}

	s.reports = append(s.reports, cloneReport(report))
	if inst := s.findInstitution(report.InstitutionID); inst != nil {
		inst.ReportCount++
	}
	for _, u := range s.mobileUsers {
		if u.ID == report.MobileUserID {
			u.ReportCount++
			break
		}
	}
	return nil
}

// GetReport gets a report by ID
func (s *MemoryStore) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == id {
			return cloneReport(r), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateReport updates a report
func (s *MemoryStore) UpdateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.reports {
		if cur.ID == report.ID {
			report.CreatedAt = cur.CreatedAt
			report.UpdatedAt = time.Now()
			s.reports[i] = cloneReport(report)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteReport deletes a report
func (s *MemoryStore) DeleteReport(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reports {
		if r.ID == id {
			if inst := s.findInstitution(r.InstitutionID); inst != nil && inst.ReportCount > 0 {
				inst.ReportCount--
			}
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListReports lists reports, optionally scoped
func (s *MemoryStore) ListReports(ctx context.Context, institutionID *uuid.UUID, mobileUserID *uuid.UUID) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if institutionID != nil && r.InstitutionID != *institutionID {
			continue
		}
		if mobileUserID != nil && r.MobileUserID != *mobileUserID {
			continue
		}
		out = append(out, cloneReport(r))
	}
	return out, nil
}

// ========== Event log methods ==========

func cloneEvent(e *models.EventLog) *models.EventLog {
	c := *e
	c.InstitutionID = cloneUUID(e.InstitutionID)
	c.EntityID = cloneUUID(e.EntityID)
	c.Details = cloneVariables(e.Details)
	return &c
}

// CreateEventLog appends an audit event
func (s *MemoryStore) CreateEventLog(ctx context.Context, event *models.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	s.events = append(s.events, cloneEvent(event))
	return nil
}

// ListEventLogs lists audit events, newest first
func (s *MemoryStore) ListEventLogs(ctx context.Context, filters EventLogFilters, limit, offset int) ([]*models.EventLog, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.EventLog, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if filters.InstitutionID != nil && (e.InstitutionID == nil || *e.InstitutionID != *filters.InstitutionID) {
			continue
		}
		if filters.Type != nil && e.Type != *filters.Type {
			continue
		}
		if filters.Level != nil && e.Level != *filters.Level {
			continue
		}
		if filters.StartTime != nil && e.CreatedAt.Before(*filters.StartTime) {
			continue
		}
		if filters.EndTime != nil && e.CreatedAt.After(*filters.EndTime) {
			continue
		}
		matched = append(matched, e)
	}

	total := int64(len(matched))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]*models.EventLog, 0, len(matched))
	for _, e := range matched {
		out = append(out, cloneEvent(e))
	}
	return out, total, nil
}
