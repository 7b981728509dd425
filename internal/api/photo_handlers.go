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

// mobileUserIDFromQuery parses an optional mobile_user_id query parameter
func mobileUserIDFromQuery(r *http.Request) (*uuid.UUID, error) {
	v := r.URL.Query().Get("mobile_user_id")
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ========== Photo handlers ==========

// HandleListPhotos lists photo records, optionally scoped
func (s *RESTServer) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
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

	photos, err := s.store.ListPhotos(r.Context(), institutionID, mobileUserID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"photos": photos,
		"total":  len(photos),
	})
}

// HandleCreatePhoto records photo metadata. The binary lives in external
// storage, only the URL is tracked.
func (s *RESTServer) HandleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileUserID uuid.UUID `json:"mobileUserId" validate:"required"`
		URL          string    `json:"url" validate:"required,url"`
		Filename     string    `json:"filename" validate:"required"`
		Region       string    `json:"region"`
		SizeBytes    int64     `json:"sizeBytes" validate:"min=0"`
		TakenAt      string    `json:"takenAt"`
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

	takenAt := time.Now()
	if req.TakenAt != "" {
		t, err := time.Parse(time.RFC3339, req.TakenAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid takenAt, expected RFC3339")
			return
		}
		takenAt = t
	}

	photo := &models.Photo{
		InstitutionID: user.InstitutionID,
		MobileUserID:  user.ID,
		URL:           req.URL,
		Filename:      req.Filename,
		Region:        req.Region,
		SizeBytes:     req.SizeBytes,
		TakenAt:       takenAt,
		Status:        models.PhotoUploaded,
	}

	if err := s.store.CreatePhoto(r.Context(), photo); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypePhotoUploaded,
		Description:   "photo uploaded: " + photo.Filename,
		InstitutionID: &photo.InstitutionID,
		EntityID:      &photo.ID,
	})

	s.respondJSON(w, http.StatusCreated, photo)
}

// HandleGetPhoto gets a photo record
func (s *RESTServer) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	photo, err := s.store.GetPhoto(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "photo not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, photo)
}

// HandleUpdatePhoto updates a photo's analysis state
func (s *RESTServer) HandleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required"`
		Region string `json:"region"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := models.PhotoStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid photo status")
		return
	}

	photo, err := s.store.GetPhoto(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "photo not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	photo.Status = status
	if req.Region != "" {
		photo.Region = req.Region
	}

	if err := s.store.UpdatePhoto(ctx, photo); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, photo)
}

// HandleDeletePhoto deletes a photo record
func (s *RESTServer) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	if err := s.store.DeletePhoto(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "photo not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
