// internal/app/features/publicprofile/handler.go
package publicprofile

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lumenlabs/profilehub/internal/app/store/profileviews"
	userstore "github.com/lumenlabs/profilehub/internal/app/store/users"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"github.com/lumenlabs/profilehub/internal/app/system/httpjson"
	"github.com/lumenlabs/profilehub/internal/app/system/timeouts"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves public profile pages. The route is reachable without a
// session; a session only matters for owner detection.
type Handler struct {
	Log   *zap.Logger
	Users *userstore.Store
	Views *profileviews.Store
}

func NewHandler(users *userstore.Store, views *profileviews.Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Users: users, Views: views}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/profile/{username}                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("failed to load profile", zap.Error(err), zap.String("username", username))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	owner := false
	if su, ok := auth.CurrentUser(r); ok && su.ID == u.ID.Hex() {
		owner = true
	}

	// A private profile reveals only its username to everyone but the owner.
	if !u.IsPublic && !owner {
		httpjson.Respond(w, http.StatusOK, models.PublicProfile{
			IsPublic: false,
			Username: u.Username,
		})
		return
	}

	// Owners previewing their own page don't count as visitors.
	if !owner {
		if err := h.Views.Record(ctx, u.ID, clientIP(r)); err != nil {
			h.Log.Warn("failed to record profile view",
				zap.Error(err), zap.String("username", u.Username))
		}
	}

	httpjson.Respond(w, http.StatusOK, models.PublicProfile{
		IsPublic:    u.IsPublic,
		Username:    u.Username,
		Name:        u.Name,
		Bio:         u.Bio,
		Location:    u.Location,
		Image:       u.Image,
		Skills:      u.Skills,
		BannerImage: u.BannerImage,
		ThemeColor:  u.ThemeColor,
	})
}

// clientIP extracts the viewer's IP, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
