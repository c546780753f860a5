// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"

	activitystore "github.com/lumenlabs/profilehub/internal/app/store/activity"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"github.com/lumenlabs/profilehub/internal/app/system/httpjson"
	"github.com/lumenlabs/profilehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const timelineLimit = 10

// Handler serves the signed-in user's activity timeline.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Activity   *activitystore.Store
}

func NewHandler(sessionMgr *auth.SessionManager, store *activitystore.Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, SessionMgr: sessionMgr, Activity: store}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/activity                                                            |
| Most recent entries, newest first. Empty timelines serialize as [].          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entries, err := h.Activity.Recent(ctx, id, timelineLimit)
	if err != nil {
		h.Log.Error("failed to load activity", zap.Error(err), zap.String("user_id", su.ID))
		httpjson.Error(w, http.StatusInternalServerError, "failed to load activity")
		return
	}

	httpjson.Respond(w, http.StatusOK, entries)
}
