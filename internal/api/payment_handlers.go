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

// ========== Payment handlers ==========

// HandleListPayments lists payments, optionally scoped to an institution
func (s *RESTServer) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionIDFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid institution_id")
		return
	}

	payments, err := s.store.ListPayments(r.Context(), institutionID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    len(payments),
	})
}

// HandleCreatePayment records a payment for an institution
func (s *RESTServer) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstitutionID uuid.UUID  `json:"institutionId" validate:"required"`
		LicenseID     *uuid.UUID `json:"licenseId"`
		Amount        int64      `json:"amount" validate:"required,min=1"`
		Method        string     `json:"method" validate:"required"`
		Status        string     `json:"status"`
		Description   string     `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := models.PaymentPending
	if req.Status != "" {
		status = models.PaymentStatus(req.Status)
		if !status.Valid() {
			s.respondError(w, http.StatusBadRequest, "invalid payment status")
			return
		}
	}

	if _, err := s.store.GetInstitution(r.Context(), req.InstitutionID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "institution not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payment := &models.Payment{
		InstitutionID: req.InstitutionID,
		LicenseID:     req.LicenseID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        status,
		Description:   req.Description,
	}
	if status == models.PaymentCompleted {
		now := time.Now()
		payment.PaidAt = &now
	}

	if err := s.store.CreatePayment(r.Context(), payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(r.Context(), notify.Event{
		Type:          models.EventTypePaymentCreated,
		Description:   "payment recorded",
		InstitutionID: &payment.InstitutionID,
		EntityID:      &payment.ID,
		Details: models.Variables{
			"amount": payment.Amount,
			"method": payment.Method,
		},
	})

	s.respondJSON(w, http.StatusCreated, payment)
}

// HandleGetPayment gets a payment
func (s *RESTServer) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, payment)
}

// HandleUpdatePayment updates a payment's settlement state
func (s *RESTServer) HandleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req struct {
		Status      string `json:"status" validate:"required"`
		Description string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := models.PaymentStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid payment status")
		return
	}

	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payment.Status = status
	payment.Description = req.Description
	if status == models.PaymentCompleted && payment.PaidAt == nil {
		now := time.Now()
		payment.PaidAt = &now
	}

	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.notifier.Publish(ctx, notify.Event{
		Type:          models.EventTypePaymentUpdated,
		Description:   "payment " + string(status),
		InstitutionID: &payment.InstitutionID,
		EntityID:      &payment.ID,
	})

	s.respondJSON(w, http.StatusOK, payment)
}

// HandleDeletePayment deletes a payment
func (s *RESTServer) HandleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	if err := s.store.DeletePayment(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
