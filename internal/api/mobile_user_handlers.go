package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
	"github.com/hairscan/hairscan-admin/internal/notify"
	"github.com/hairscan/hairscan-admin/internal/storage"
)

// ========== Mobile user handlers ==========

// HandleListMobileUsers lists mobile users, optionally scoped to an
// institution
func (s *RESTServer) HandleListMobileUsers(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionIDFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution_id")
		return
	}

	users, err := s.store.ListMobileUsers(r.Context(), institutionID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"mobile_users": users,
		"total":        len(users),
	})
}

// HandleCreateMobileUser registers a mobile user under an institution.
// Registration consumes a licensed seat and fails when the institution
// has no seats left.
func (s *RESTServer) HandleCreateMobileUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstitutionID uuid.UUID `json:"institutionId" validate:"required"`
		Name          string    `json:"name" validate:"required,min=2,max=100"`
		Phone         string    `json:"phone"`
		Email         string    `json:"email" validate:"omitempty,email"`
		BirthYear     int       `json:"birthYear" validate:"omitempty,min=1900,max=2100"`
		Gender        string    `json:"gender" validate:"omitempty,oneof=male female other"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := s.store.GetInstitution(r.Context(), req.InstitutionID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if inst.UsersCount.Limit > 0 && inst.UsersCount.Current >= inst.UsersCount.Limit {
		s.respondError(w, http.StatusConflict, "institution has no licensed seats left")
		return
	}

	user := &models.MobileUser{
		InstitutionID: req.InstitutionID,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		BirthYear:     req.BirthYear,
		Gender:        req.Gender,
		Status:        models.MobileUserActive,
	}

	if err := s.store.CreateMobileUser(r.Context(), user); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypeMobileUserCreated,
		Description:   "mobile user registered: " + user.Name,
		InstitutionID: &user.InstitutionID,
		EntityID:      &user.ID,
	})

	s.respondJSON(w, http.StatusCreated, user)
}

// HandleGetMobileUser gets a mobile user
func (s *RESTServer) HandleGetMobileUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mobile user id")
		return
	}

	user, err := s.store.GetMobileUser(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mobile user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// HandleUpdateMobileUser updates a mobile user
func (s *RESTServer) HandleUpdateMobileUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mobile user id")
		return
	}

	var req struct {
		Name      string `json:"name" validate:"required,min=2,max=100"`
		Phone     string `json:"phone"`
		Email     string `json:"email" validate:"omitempty,email"`
		BirthYear int    `json:"birthYear" validate:"omitempty,min=1900,max=2100"`
		Gender    string `json:"gender" validate:"omitempty,oneof=male female other"`
		Status    string `json:"status" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := models.MobileUserStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid mobile user status")
		return
	}

	user, err := s.store.GetMobileUser(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mobile user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	user.Name = req.Name
	user.Phone = req.Phone
	user.Email = req.Email
	user.BirthYear = req.BirthYear
	user.Gender = req.Gender
	user.Status = status

	if err := s.store.UpdateMobileUser(ctx, user); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// HandleDeleteMobileUser deletes a mobile user and releases their seat
func (s *RESTServer) HandleDeleteMobileUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mobile user id")
		return
	}

	if err := s.store.DeleteMobileUser(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mobile user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
