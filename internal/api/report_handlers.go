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

// ========== Report handlers ==========

// HandleListReports lists diagnostic reports, optionally scoped
func (s *RESTServer) HandleListReports(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionIDFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution_id")
		return
	}
	mobileUserID, err := mobileUserIDFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mobile_user_id")
		return
	}

	reports, err := s.store.ListReports(r.Context(), institutionID, mobileUserID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   len(reports),
	})
}

// HandleCreateReport creates a diagnostic report for a mobile user
func (s *RESTServer) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileUserID uuid.UUID  `json:"mobileUserId" validate:"required"`
		PhotoID      *uuid.UUID `json:"photoId"`
		Title        string     `json:"title" validate:"required,min=2,max=200"`
		Summary      string     `json:"summary"`
		Stage        int        `json:"stage" validate:"omitempty,min=1,max=7"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetMobileUser(r.Context(), req.MobileUserID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mobile user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.PhotoID != nil {
		if _, err := s.store.GetPhoto(r.Context(), *req.PhotoID); err != nil {
			if err == storage.ErrNotFound {
				s.respondError(w, http.StatusNotFound, "photo not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	report := &models.Report{
		InstitutionID: user.InstitutionID,
		MobileUserID:  user.ID,
		PhotoID:       req.PhotoID,
		Title:         req.Title,
		Summary:       req.Summary,
		Stage:         req.Stage,
		Status:        models.ReportDraft,
	}

	if err := s.store.CreateReport(r.Context(), report); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A new report counts as a diagnosis for the user
	now := time.Now()
	user.LastDiagnosisAt = &now
	if err := s.store.UpdateMobileUser(r.Context(), user); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeReportCreated,
		Description:   "report created: " + report.Title,
		InstitutionID: &report.InstitutionID,
		EntityID:      &report.ID,
	})

	s.respondJSON(w, http.StatusCreated, report)
}

// HandleGetReport gets a report
func (s *RESTServer) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "report not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// HandleUpdateReport updates a report; issuing sets issuedAt once
func (s *RESTServer) HandleUpdateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	var req struct {
		Title   string `json:"title" validate:"required,min=2,max=200"`
		Summary string `json:"summary"`
		Stage   int    `json:"stage" validate:"omitempty,min=1,max=7"`
		Status  string `json:"status" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := models.ReportStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid report status")
		return
	}

	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "report not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	report.Title = req.Title
	report.Summary = req.Summary
	report.Stage = req.Stage
	report.Status = status
	if status == models.ReportIssued && report.IssuedAt == nil {
		now := time.Now()
		report.IssuedAt = &now
	}

	if err := s.store.UpdateReport(ctx, report); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// HandleDeleteReport deletes a report
func (s *RESTServer) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	if err := s.store.DeleteReport(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "report not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
