package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const msgRouteNotFound = "Route not found"

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestID,
		middleware.RealIP,
		s.metrics.Instrument,
		s.accessLog,
		s.recoverer,
		securityHeaders,
		s.cors(s.config.Origins()),
		maxBodyBytes(s.config.MaxBodyBytes),
	)
	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.notFound)

	r.Get("/health", s.health)
	r.Get("/readyz", s.ready)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", s.authRoutes)
		r.Route("/plans", s.planRoutes)
		r.Route("/subscriptions", s.subscriptionRoutes)
		r.Route("/payments", s.paymentRoutes)
		r.Route("/biometrics", s.biometricRoutes)
		r.Route("/notifications", s.notificationRoutes)
	})
	return r
}

func (s *Server) authRoutes(r chi.Router) {
	limited := s.rateLimit(s.authLimiter)
	r.With(limited).Post("/register", s.register)
	r.With(limited).Post("/login", s.login)
	r.With(limited).Post("/forgot-password", s.forgotPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/me", s.me)
		r.Post("/logout", s.logout)
		r.Put("/update-profile", s.updateProfile)
		r.Put("/update-password", s.updatePassword)
		r.Delete("/delete-account", s.deleteAccount)
		r.Post("/avatar-upload-url", s.avatarUploadURL)
		r.Get("/avatar-url", s.avatarURL)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/reset-password", s.resetPassword)
			r.Get("/users", s.listUsers)
			r.Put("/users/{id}", s.updateUser)
			r.Delete("/users/{id}", s.deleteUser)
		})
	})
}

func (s *Server) planRoutes(r chi.Router) {
	r.Get("/", s.listPlans)
	r.Get("/{id}", s.getPlan)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth, s.requireAdmin)
		r.Post("/", s.createPlan)
		r.Put("/{id}", s.updatePlan)
		r.Delete("/{id}", s.deletePlan)
		r.Patch("/{id}/status", s.setPlanStatus)
	})
}

func (s *Server) subscriptionRoutes(r chi.Router) {
	r.Use(s.requireAuth)
	r.Post("/", s.subscribe)
	r.Get("/me", s.mySubscription)
	r.Patch("/cancel", s.cancelSubscription)
	r.With(s.requireAdmin).Get("/", s.listSubscriptions)
}

func (s *Server) paymentRoutes(r chi.Router) {
	r.Use(s.requireAuth)
	r.Post("/", s.createPayment)
	r.Get("/user/{userId}", s.userPayments)
	r.With(s.requireAdmin).Get("/", s.listPayments)
}

func (s *Server) biometricRoutes(r chi.Router) {
	r.Use(s.requireAuth)
	r.Post("/", s.addReading)
	r.Get("/latest", s.latestReading)
	r.Get("/history", s.readingHistory)
	r.Get("/dashboard", s.dashboard)
	r.Get("/realtime", s.realtime)
	r.Get("/battery", s.battery)
}

func (s *Server) notificationRoutes(r chi.Router) {
	r.Use(s.requireAuth)
	r.Get("/", s.listNotifications)
	r.Patch("/read/{id}", s.markNotificationRead)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{Code: "NOT_FOUND", Message: msgRouteNotFound}})
}
