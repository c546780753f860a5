// internal/app/features/activity/routes.go
package activity

import "github.com/go-chi/chi/v5"

// Routes returns the router for the activity timeline.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.SessionMgr.RequireSignedIn)

	// GET /api/activity
	r.Get("/", h.ServeList)

	return r
}
