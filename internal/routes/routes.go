package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/handlers"
	"github.com/BradenHooton/inkwell/internal/middleware"
	"github.com/BradenHooton/inkwell/internal/models"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth          *handlers.AuthHandler
	User          *handlers.UserHandler
	Admin         *handlers.AdminHandler
	Audit         *handlers.AuditHandler
	Notifications *handlers.NotificationHandler
	Health        *handlers.HealthHandler
}

// Security holds what the authenticated groups need to check a session.
type Security struct {
	TokenManager *auth.TokenManager
	Revocation   auth.TokenRevocationChecker
	Revoke       auth.RevocationConfig
	Accounts     auth.AccountFetcher
	RateLimit    middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, sec Security) {
	router.Get("/health", h.Health.Health)

	// Public lifecycle routes, rate limited per client IP
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(sec.RateLimit))

		r.Post("/signup", h.Auth.Register)
		r.Post("/signup/{token}/activation", h.Auth.Activate)
		r.Post("/signin", h.Auth.Signin)
		r.Post("/reset", h.Auth.RequestPasswordReset)
		r.Get("/reset/{token}", h.Auth.ValidateResetToken)
		r.Put("/reset/{token}/password", h.Auth.RedeemPasswordReset)
	})

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(sec.TokenManager, sec.Revocation, sec.Revoke))

		r.Delete("/signout", h.Auth.Signout)

		r.Get("/me", h.User.Me)
		r.Put("/me", h.User.UpdateProfile)
		r.Put("/me/password", h.User.ChangePassword)

		r.Get("/notifications", h.Notifications.List)
		r.Put("/notifications/{id}", h.Notifications.ToggleRead)
		r.Delete("/notifications/{id}", h.Notifications.Remove)

		// Admin-only routes
		r.Route("/admin/users", func(r chi.Router) {
			r.Use(auth.RequireRole(sec.Accounts, models.RoleAdmin))

			r.Get("/", h.Admin.ListAccounts)
			r.Put("/{id}/status", h.Admin.SetStatus)
			r.Delete("/{id}", h.Admin.DeleteAccount)
			r.Get("/{id}/audit", h.Audit.GetAccountTrail)
		})
	})
}
