package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
	"github.com/hairscan/hairscan-admin/internal/notify"
	"github.com/hairscan/hairscan-admin/internal/storage"
)

// institutionIDFromQuery parses an optional institution_id query parameter
func institutionIDFromQuery(r *http.Request) (*uuid.UUID, error) {
	v := r.URL.Query().Get("institution_id")
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ========== License handlers ==========

// HandleListLicenses lists licenses, optionally scoped to an institution
func (s *RESTServer) HandleListLicenses(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionIDFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution_id")
		return
	}

	licenses, err := s.store.ListLicenses(r.Context(), institutionID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"licenses": licenses,
		"total":    len(licenses),
	})
}

// HandleCreateLicense creates a license for an institution
func (s *RESTServer) HandleCreateLicense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstitutionID uuid.UUID `json:"institutionId" validate:"required"`
		Status        string    `json:"status" validate:"required"`
		Plan          string    `json:"plan" validate:"required,min=2,max=100"`
		SeatLimit     int       `json:"seatLimit" validate:"min=0"`
		StartsAt      string    `json:"startsAt" validate:"required"`
		ExpiresAt     string    `json:"expiresAt"`
		Notes         string    `json:"notes"`
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
	if !status.Valid() || status == models.LicenseNone {
		s.respondError(w, http.StatusBadRequest, "invalid license status")
		return
	}

	startsAt, err := time.Parse(dateLayout, req.StartsAt)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid startsAt, expected YYYY-MM-DD")
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(dateLayout, req.ExpiresAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid expiresAt, expected YYYY-MM-DD")
			return
		}
		expiresAt = &t
	}

	// The parent institution must exist
	if _, err := s.store.GetInstitution(r.Context(), req.InstitutionID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lic := &models.License{
		InstitutionID: req.InstitutionID,
		Status:        status,
		Plan:          req.Plan,
		SeatLimit:     req.SeatLimit,
		StartsAt:      startsAt,
		ExpiresAt:     expiresAt,
		Notes:         req.Notes,
	}

	if err := s.store.CreateLicense(r.Context(), lic); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeLicenseCreated,
		Description:   "license created: " + lic.Plan,
		InstitutionID: &lic.InstitutionID,
		EntityID:      &lic.ID,
	})

	s.respondJSON(w, http.StatusCreated, lic)
}

// HandleGetLicense gets a license
func (s *RESTServer) HandleGetLicense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid license id")
		return
	}

	lic, err := s.store.GetLicense(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "license not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, lic)
}

// HandleUpdateLicense updates a license
func (s *RESTServer) HandleUpdateLicense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid license id")
		return
	}

	var req struct {
		Status    string `json:"status" validate:"required"`
		Plan      string `json:"plan" validate:"required,min=2,max=100"`
		SeatLimit int    `json:"seatLimit" validate:"min=0"`
		ExpiresAt string `json:"expiresAt"`
		Notes     string `json:"notes"`
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
	if !status.Valid() || status == models.LicenseNone {
		s.respondError(w, http.StatusBadRequest, "invalid license status")
		return
	}

	lic, err := s.store.GetLicense(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "license not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lic.Status = status
	lic.Plan = req.Plan
	lic.SeatLimit = req.SeatLimit
	lic.Notes = req.Notes

	if req.ExpiresAt != "" {
		t, err := time.Parse(dateLayout, req.ExpiresAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid expiresAt, expected YYYY-MM-DD")
			return
		}
		lic.ExpiresAt = &t
	} else {
		lic.ExpiresAt = nil
	}

	if err := s.store.UpdateLicense(ctx, lic); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, lic)
}

// HandleDeleteLicense deletes a license
func (s *RESTServer) HandleDeleteLicense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid license id")
		return
	}

	if err := s.store.DeleteLicense(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "license not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
