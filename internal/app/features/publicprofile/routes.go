// internal/app/features/publicprofile/routes.go
package publicprofile

import "github.com/go-chi/chi/v5"

// Routes returns the router for public profile lookup.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// GET /api/profile/{username}
	r.Get("/{username}", h.ServeProfile)

	return r
}
