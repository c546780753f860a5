// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for the auth endpoints. The Google legs are
// public; /me sits behind the signed-in requirement.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// GET /auth/google - Initiate Google OAuth flow
	r.Get("/google", h.ServeLogin)

	// GET /auth/google/callback - Handle Google OAuth callback
	r.Get("/google/callback", h.ServeCallback)

	// POST /auth/logout - Destroy the session
	r.Post("/logout", h.ServeLogout)

	// GET /auth/me - Current user record
	r.Group(func(r chi.Router) {
		r.Use(h.SessionMgr.RequireSignedIn)
		r.Get("/me", h.ServeMe)
	})

	return r
}
