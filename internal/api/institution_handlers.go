package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/filter"
	"github.com/hairscan/hairscan-admin/internal/models"
	"github.com/hairscan/hairscan-admin/internal/notify"
	"github.com/hairscan/hairscan-admin/internal/storage"
)

const dateLayout = "2006-01-02"

// criteriaFromQuery builds list criteria from query parameters.
// Dates use YYYY-MM-DD and both bounds are inclusive.
func criteriaFromQuery(r *http.Request) (filter.Criteria, error) {
	var c filter.Criteria

	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return c, err
		}
		c.RegisteredAfter = &t
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return c, err
		}
		c.RegisteredBefore = &t
	}
	c.Search = r.URL.Query().Get("search")

	return c, nil
}

// ========== Institution handlers ==========

// HandleListInstitutions lists institutions with optional date range and
// free-text filters
func (s *RESTServer) HandleListInstitutions(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	institutions, err := s.store.ListInstitutions(r.Context(), criteria)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"institutions": institutions,
		"total":        len(institutions),
	})
}

// HandleCreateInstitution creates an institution in pending state
func (s *RESTServer) HandleCreateInstitution(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string `json:"name" validate:"required,min=2,max=200"`
		LegalName           string `json:"legalName"`
		Category            string `json:"category" validate:"required"`
		Representative      string `json:"representative" validate:"required,min=2,max=100"`
		RepresentativePhone string `json:"representativePhone"`
		RepresentativeEmail string `json:"representativeEmail" validate:"omitempty,email"`
		BusinessNumber      string `json:"businessNumber" validate:"required"`
		CertificateURL      string `json:"certificateUrl" validate:"omitempty,url"`
		Address             string `json:"address"`
		AddressDetail       string `json:"addressDetail"`
		PostalCode          string `json:"postalCode"`
		Phone               string `json:"phone"`
		Email               string `json:"email" validate:"omitempty,email"`
		RegistrationDate    string `json:"registrationDate"`
		SeatLimit           int    `json:"seatLimit" validate:"min=0"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := models.InstitutionCategory(req.Category)
	if !category.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid category")
		return
	}

	registrationDate := time.Now().Truncate(24 * time.Hour)
	if req.RegistrationDate != "" {
		t, err := time.Parse(dateLayout, req.RegistrationDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid registrationDate, expected YYYY-MM-DD")
			return
		}
		registrationDate = t
	}

	inst := &models.Institution{
		Name:                req.Name,
		LegalName:           req.LegalName,
		Category:            category,
		Representative:      req.Representative,
		RepresentativePhone: req.RepresentativePhone,
		RepresentativeEmail: req.RepresentativeEmail,
		BusinessNumber:      req.BusinessNumber,
		CertificateURL:      req.CertificateURL,
		Address:             req.Address,
		AddressDetail:       req.AddressDetail,
		PostalCode:          req.PostalCode,
		Phone:               req.Phone,
		Email:               req.Email,
		RegistrationDate:    registrationDate,
		UsersCount:          models.SeatUsage{Limit: req.SeatLimit},
	}

	if err := s.store.CreateInstitution(r.Context(), inst); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "institution with this business number already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeInstitutionCreated,
		Description:   "institution created: " + inst.Name,
		InstitutionID: &inst.ID,
	})

	s.respondJSON(w, http.StatusCreated, inst)
}

// HandleGetInstitution gets an institution
func (s *RESTServer) HandleGetInstitution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution id")
		return
	}

	inst, err := s.store.GetInstitution(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, inst)
}

// HandleUpdateInstitution updates institution profile fields. The request
// must carry the version it read; a stale version gets 409.
func (s *RESTServer) HandleUpdateInstitution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution id")
		return
	}

	var req struct {
		Version             int64  `json:"version" validate:"required,min=1"`
		Name                string `json:"name" validate:"required,min=2,max=200"`
		LegalName           string `json:"legalName"`
		Category            string `json:"category" validate:"required"`
		Representative      string `json:"representative" validate:"required,min=2,max=100"`
		RepresentativePhone string `json:"representativePhone"`
		RepresentativeEmail string `json:"representativeEmail" validate:"omitempty,email"`
		CertificateURL      string `json:"certificateUrl" validate:"omitempty,url"`
		Address             string `json:"address"`
		AddressDetail       string `json:"addressDetail"`
		PostalCode          string `json:"postalCode"`
		Phone               string `json:"phone"`
		Email               string `json:"email" validate:"omitempty,email"`
		SeatLimit           int    `json:"seatLimit" validate:"min=0"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := models.InstitutionCategory(req.Category)
	if !category.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid category")
		return
	}

	inst, err := s.store.GetInstitution(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	inst.Version = req.Version
	inst.Name = req.Name
	inst.LegalName = req.LegalName
	inst.Category = category
	inst.Representative = req.Representative
	inst.RepresentativePhone = req.RepresentativePhone
	inst.RepresentativeEmail = req.RepresentativeEmail
	inst.CertificateURL = req.CertificateURL
	inst.Address = req.Address
	inst.AddressDetail = req.AddressDetail
	inst.PostalCode = req.PostalCode
	inst.Phone = req.Phone
	inst.Email = req.Email
	inst.UsersCount.Limit = req.SeatLimit

	if err := s.store.UpdateInstitution(ctx, inst); err != nil {
		switch err {
		case storage.ErrConflict:
			s.respondError(w, http.StatusConflict, "institution was modified concurrently, reload and retry")
		case storage.ErrNotFound:
			s.respondError(w, http.StatusNotFound, "institution not found")
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.notifier.Publish(ctx, notify.Event{
		Type:          models.EventTypeInstitutionUpdated,
		Description:   "institution updated: " + inst.Name,
		InstitutionID: &inst.ID,
	})

	s.respondJSON(w, http.StatusOK, inst)
}

// HandleDeleteInstitution deletes an institution
func (s *RESTServer) HandleDeleteInstitution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution id")
		return
	}

	if err := s.store.DeleteInstitution(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeInstitutionDeleted,
		Description:   "institution deleted",
		InstitutionID: &id,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleApproveInstitution transitions a pending institution to approved.
// Approving an already approved institution is a no-op and still returns
// the current record.
func (s *RESTServer) HandleApproveInstitution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution id")
		return
	}

	inst, err := s.store.ApproveInstitution(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeInstitutionApproved,
		Description:   "institution approved: " + inst.Name,
		InstitutionID: &inst.ID,
	})

	s.respondJSON(w, http.StatusOK, inst)
}

// HandleSetInstitutionLicense sets the license status and expiry shown on
// the institution record
func (s *RESTServer) HandleSetInstitutionLicense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required"`
		Expiry string `json:"expiry"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := models.LicenseStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid license status")
		return
	}

	var expiry *time.Time
	if req.Expiry != "" {
		t, err := time.Parse(dateLayout, req.Expiry)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid expiry, expected YYYY-MM-DD")
			return
		}
		expiry = &t
	}

	inst, err := s.store.SetInstitutionLicense(r.Context(), id, status, expiry)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeLicenseChanged,
		Description:   "license set to " + string(status) + ": " + inst.Name,
		InstitutionID: &inst.ID,
		Details: models.Variables{
			"status": string(status),
		},
	})

	s.respondJSON(w, http.StatusOK, inst)
}
