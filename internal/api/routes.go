package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.HandleLogin)
		r.Post("/refresh", s.HandleRefresh)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		// Admin users
		r.Route("/users", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListUsers)
			r.Post("/", s.HandleCreateUser)
			r.Get("/me", s.HandleGetCurrentUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetUser)
				r.Put("/", s.HandleUpdateUser)
				r.Delete("/", s.HandleDeleteUser)
			})
		})

		// Institutions
		r.Route("/institutions", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListInstitutions)
			r.Post("/", s.HandleCreateInstitution)
			r.Get("/export", s.HandleExportInstitutions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetInstitution)
				r.Put("/", s.HandleUpdateInstitution)
				r.Delete("/", s.HandleDeleteInstitution)
				r.Post("/approve", s.HandleApproveInstitution)
				r.Put("/license", s.HandleSetInstitutionLicense)
			})
		})

		// Licenses
		r.Route("/licenses", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListLicenses)
			r.Post("/", s.HandleCreateLicense)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetLicense)
				r.Put("/", s.HandleUpdateLicense)
				r.Delete("/", s.HandleDeleteLicense)
			})
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListPayments)
			r.Post("/", s.HandleCreatePayment)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetPayment)
				r.Put("/", s.HandleUpdatePayment)
				r.Delete("/", s.HandleDeletePayment)
			})
		})

		// Mobile users
		r.Route("/mobile-users", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListMobileUsers)
			r.Post("/", s.HandleCreateMobileUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetMobileUser)
				r.Put("/", s.HandleUpdateMobileUser)
				r.Delete("/", s.HandleDeleteMobileUser)
			})
		})

		// Photos
		r.Route("/photos", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListPhotos)
			r.Post("/", s.HandleCreatePhoto)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetPhoto)
				r.Put("/", s.HandleUpdatePhoto)
				r.Delete("/", s.HandleDeletePhoto)
			})
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListReports)
			r.Post("/", s.HandleCreateReport)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetReport)
				r.Put("/", s.HandleUpdateReport)
				r.Delete("/", s.HandleDeleteReport)
			})
		})

		// Audit events
		r.Route("/events", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListEvents)
		})
	})
}
