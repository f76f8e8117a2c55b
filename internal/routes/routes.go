package routes

import (
	"github.com/go-chi/chi/v5"

	"walletwatch/internal/auth"
	"walletwatch/internal/handlers"
	"walletwatch/internal/middleware"
)

// Handlers bundles every route handler for registration
type Handlers struct {
	Submissions *handlers.SubmissionHandler
	Auth        *handlers.AuthHandler
	Account     *handlers.AccountHandler
	TwoFactor   *handlers.TwoFactorHandler
	Settings    *handlers.SettingsHandler
	APIKeys     *handlers.APIKeyHandler
	Audit       *handlers.AuditHandler
	Lookups     *handlers.LookupHandler
}

// Config tunes the edge rate limits applied at registration
type Config struct {
	LoginLimit  middleware.RateLimitConfig
	SubmitLimit middleware.RateLimitConfig
}

// DefaultConfig returns the production edge limits
func DefaultConfig() Config {
	return Config{
		LoginLimit:  middleware.DefaultLoginRateLimit(),
		SubmitLimit: middleware.DefaultSubmitRateLimit(),
	}
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	apiKeyAuth handlers.APIKeyAuthenticator,
	cfg Config,
) {
	loginLimit := cfg.LoginLimit
	submitLimit := cfg.SubmitLimit

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(submitLimit)).Post("/submissions", h.Submissions.Create)
	router.Get("/categories", h.Lookups.Categories)
	router.Get("/cryptocurrencies", h.Lookups.Cryptocurrencies)

	// Read API - API key required
	router.Group(func(r chi.Router) {
		r.Use(handlers.RequireAPIKey(apiKeyAuth))
		r.Get("/api/submissions", h.Submissions.ListPublic)
		r.Get("/api/submissions/{id}", h.Submissions.GetPublic)
	})

	// Admin login sits outside the session guard but behind the edge limit
	router.With(middleware.RateLimitByIP(loginLimit)).Post("/admin/login", h.Auth.Login)

	// Protected admin routes - session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(tokenManager))

		r.Get("/admin/me", h.Auth.Me)
		r.Post("/admin/logout", h.Auth.Logout)
		r.Put("/admin/account", h.Account.UpdateUsername)
		r.Put("/admin/account/password", h.Account.UpdatePassword)

		r.Get("/admin/submissions", h.Submissions.List)
		r.Get("/admin/submissions/{id}", h.Submissions.Get)
		r.Patch("/admin/submissions/{id}", h.Submissions.Review)
		r.Delete("/admin/submissions/{id}", h.Submissions.Delete)

		r.Post("/admin/2fa/setup", h.TwoFactor.Setup)
		r.Post("/admin/2fa/verify", h.TwoFactor.Verify)
		r.Get("/admin/2fa", h.TwoFactor.Status)
		r.Delete("/admin/2fa", h.TwoFactor.Disable)

		r.Get("/admin/settings", h.Settings.List)
		r.Put("/admin/settings", h.Settings.Update)
		r.Get("/admin/blocklist", h.Settings.GetBlocklist)
		r.Put("/admin/blocklist", h.Settings.UpdateBlocklist)

		r.Post("/admin/api-keys", h.APIKeys.Create)
		r.Get("/admin/api-keys", h.APIKeys.List)
		r.Delete("/admin/api-keys/{id}", h.APIKeys.Delete)

		r.Get("/admin/audit", h.Audit.List)
	})
}
