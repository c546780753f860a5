// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the router for the account endpoints. Everything here
// requires a signed-in session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.SessionMgr.RequireSignedIn)

	r.Route("/me", func(r chi.Router) {
		r.Get("/", h.ServeGetMe)
		r.Put("/", h.ServeUpdateProfile)
		r.Delete("/", h.ServeDelete)
		r.Put("/username", h.ServeUpdateUsername)
		r.Put("/toggle-public", h.ServeTogglePublic)
		r.Get("/stats", h.ServeStats)
	})

	return r
}
