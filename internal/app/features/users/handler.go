// internal/app/features/users/handler.go
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	activitystore "github.com/lumenlabs/profilehub/internal/app/store/activity"
	"github.com/lumenlabs/profilehub/internal/app/store/profileviews"
	userstore "github.com/lumenlabs/profilehub/internal/app/store/users"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"github.com/lumenlabs/profilehub/internal/app/system/httpjson"
	"github.com/lumenlabs/profilehub/internal/app/system/normalize"
	"github.com/lumenlabs/profilehub/internal/app/system/timeouts"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// phoneRe is the permissive phone character class: digits, spaces,
// plus, hyphen, parentheses. Empty is allowed (clearing the field).
var phoneRe = regexp.MustCompile(`^[0-9\s()+-]*$`)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
)

// Handler serves the signed-in user's account endpoints.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
	Activity   *activitystore.Store
	Views      *profileviews.Store
}

// NewHandler creates a users handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	users *userstore.Store,
	activity *activitystore.Store,
	views *profileviews.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Users:      users,
		Activity:   activity,
		Views:      views,
	}
}

// currentUserID extracts the ObjectID of the signed-in user. Every route
// here sits behind RequireSignedIn, so a miss means the session cookie
// carried a malformed ID.
func currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/users/me                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("failed to load user", zap.Error(err), zap.String("user_id", id.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Respond(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/users/me                                                            |
| Partial profile update. Absent fields stay untouched; present-but-empty      |
| fields are cleared.                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Phone       *string `json:"phone"`
	Location    *string `json:"location"`
	Skills      *string `json:"skills"`
	BannerImage *string `json:"banner_image"`
	ThemeColor  *string `json:"theme_color"`
	IsPublic    *bool   `json:"is_public"`
}

func (h *Handler) ServeUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Phone != nil && !phoneRe.MatchString(strings.TrimSpace(*req.Phone)) {
		httpjson.Error(w, http.StatusBadRequest, "invalid phone number")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, id, userstore.ProfileUpdate{
		Name:        req.Name,
		Bio:         req.Bio,
		Phone:       req.Phone,
		Location:    req.Location,
		Skills:      req.Skills,
		BannerImage: req.BannerImage,
		ThemeColor:  req.ThemeColor,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		h.Log.Error("failed to update profile", zap.Error(err), zap.String("user_id", id.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.logActivity(ctx, id, "Updated profile")

	httpjson.Respond(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/users/me/username                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type updateUsernameRequest struct {
	Username string `json:"username"`
}

func (h *Handler) ServeUpdateUsername(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username := normalize.Username(req.Username)
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		httpjson.Error(w, http.StatusBadRequest, "username must be 3-50 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.UpdateUsername(ctx, id, username)
	if err != nil {
		if err == userstore.ErrUsernameTaken {
			httpjson.Error(w, http.StatusConflict, "username already taken")
			return
		}
		h.Log.Error("failed to update username", zap.Error(err), zap.String("user_id", id.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "failed to update username")
		return
	}

	h.logActivity(ctx, id, fmt.Sprintf("Changed username to %s", username))

	httpjson.Respond(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/users/me/toggle-public                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTogglePublic(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.TogglePublic(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("failed to toggle visibility", zap.Error(err), zap.String("user_id", id.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "failed to toggle visibility")
		return
	}

	action := "Set profile to private"
	if u.IsPublic {
		action = "Set profile to public"
	}
	h.logActivity(ctx, id, action)

	httpjson.Respond(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/users/me                                                         |
| Permanent deletion: user record, activity timeline, and profile views all    |
| go, and the session cookie is cleared in the same response.                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		h.Log.Error("failed to delete user", zap.Error(err), zap.String("user_id", id.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	// Related data goes too. The account is already gone, so cleanup
	// failures are logged rather than surfaced.
	if err := h.Activity.DeleteForUser(ctx, id); err != nil {
		h.Log.Warn("failed to delete activity for user", zap.Error(err), zap.String("user_id", id.Hex()))
	}
	if err := h.Views.DeleteForUser(ctx, id); err != nil {
		h.Log.Warn("failed to delete profile views for user", zap.Error(err), zap.String("user_id", id.Hex()))
	}

	if sess, err := h.SessionMgr.GetSession(r); err == nil {
		sess.Options.MaxAge = -1
		sess.Values = map[interface{}]interface{}{}
		if err := sess.Save(r, w); err != nil {
			h.Log.Warn("failed to clear session after deletion", zap.Error(err))
		}
	}

	h.Log.Info("account permanently deleted", zap.String("user_id", id.Hex()))

	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "account permanently deleted"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/users/me/stats                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

const recentActivityLimit = 5

func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("failed to load user", zap.Error(err), zap.String("user_id", id.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	views, err := h.Views.Count(ctx, id)
	if err != nil {
		h.Log.Warn("failed to count profile views", zap.Error(err), zap.String("user_id", id.Hex()))
	}

	recent, err := h.Activity.Recent(ctx, id, recentActivityLimit)
	if err != nil {
		h.Log.Warn("failed to load recent activity", zap.Error(err), zap.String("user_id", id.Hex()))
		recent = []models.ActivityLog{}
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"user":               u,
		"profile_views":      views,
		"recent_activity":    recent,
		"profile_completion": profileCompletion(u),
	})
}

// profileCompletion is the percentage of the required profile fields
// {name, bio, phone, location} that are non-empty.
func profileCompletion(u *models.User) int {
	present := 0
	for _, v := range []string{u.Name, u.Bio, u.Phone, u.Location} {
		if v != "" {
			present++
		}
	}
	return present * 100 / 4
}

func (h *Handler) logActivity(ctx context.Context, userID primitive.ObjectID, action string) {
	if err := h.Activity.Log(ctx, userID, action); err != nil {
		h.Log.Warn("failed to log activity",
			zap.Error(err),
			zap.String("user_id", userID.Hex()),
			zap.String("action", action))
	}
}
