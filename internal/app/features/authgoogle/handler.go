// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	activitystore "github.com/lumenlabs/profilehub/internal/app/store/activity"
	"github.com/lumenlabs/profilehub/internal/app/store/oauthstate"
	userstore "github.com/lumenlabs/profilehub/internal/app/store/users"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"github.com/lumenlabs/profilehub/internal/app/system/httpjson"
	"github.com/lumenlabs/profilehub/internal/app/system/timeouts"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication and the session endpoints.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
	Activity   *activitystore.Store
	StateStore *oauthstate.Store

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://api.profilehub.dev/auth/google/callback"

	// FrontendURL is where the browser lands after the OAuth round trip
	// (and where failure legs redirect with ?error=<code>).
	FrontendURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	users *userstore.Store,
	activity *activitystore.Store,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL, frontendURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Users:        users,
		Activity:     activity,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		FrontendURL:  strings.TrimRight(frontendURL, "/"),
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToFrontend(w, r, "/?error=google_not_configured")
		return
	}

	// Generate cryptographically secure state
	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToFrontend(w, r, "/?error=internal")
		return
	}

	// Get return URL from query params
	returnURL := query.Get(r, "return")

	// Store state with 10-minute expiry
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectToFrontend(w, r, "/?error=internal")
		return
	}

	// Redirect to Google
	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", url),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Handles the OAuth callback from Google, exchanges code for tokens, fetches   |
| user info, finds or creates the user, and creates the session.               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check for errors from Google
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		errDesc := r.URL.Query().Get("error_description")
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", errDesc))
		h.redirectToFrontend(w, r, "/?error=google_denied")
		return
	}

	// Validate state parameter
	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectToFrontend(w, r, "/?error=invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectToFrontend(w, r, "/?error=internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToFrontend(w, r, "/?error=invalid_state")
		return
	}

	// Exchange code for token
	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectToFrontend(w, r, "/?error=invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectToFrontend(w, r, "/?error=token_exchange")
		return
	}

	// Fetch user info from Google
	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectToFrontend(w, r, "/?error=user_info")
		return
	}

	h.Log.Debug("Google user info fetched",
		zap.String("google_id", googleUser.ID),
		zap.String("email", googleUser.Email),
		zap.String("name", googleUser.Name))

	user, err := h.findOrCreateUser(ctx, googleUser)
	if err != nil {
		h.Log.Error("failed to find or create user", zap.Error(err))
		h.redirectToFrontend(w, r, "/?error=internal")
		return
	}

	// Create session and redirect
	h.createSessionAndRedirect(w, r, user, returnURL)
}

/*─────────────────────────────────────────────────────────────────────────────*
| User lookup                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// findOrCreateUser looks up the user by Google ID; unknown Google accounts
// get a fresh record with a generated username. Existing users get their
// login counter bumped. Both paths leave an activity entry.
func (h *Handler) findOrCreateUser(ctx context.Context, googleUser *googleUserInfo) (*models.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByGoogleID(ctxTimeout, googleUser.ID)
	if err == nil {
		if err := h.Users.IncrementLogin(ctxTimeout, u.ID); err != nil {
			h.Log.Warn("failed to increment login count",
				zap.Error(err), zap.String("user_id", u.ID.Hex()))
		}
		h.logActivity(ctx, u.ID, "Logged in")
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	u, err = h.Users.Create(ctxTimeout, googleUser.ID, googleUser.Name, googleUser.Email, googleUser.Picture)
	if err != nil {
		return nil, err
	}

	h.Log.Info("new user created via Google OAuth",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username))

	h.logActivity(ctx, u.ID, "Account created")
	return u, nil
}

// logActivity records a timeline entry; logging failures never fail the login.
func (h *Handler) logActivity(ctx context.Context, userID primitive.ObjectID, action string) {
	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	if err := h.Activity.Log(ctxTimeout, userID, action); err != nil {
		h.Log.Warn("failed to log activity",
			zap.Error(err),
			zap.String("user_id", userID.Hex()),
			zap.String("action", action))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session creation                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// createSessionAndRedirect creates an authenticated session and redirects to
// the frontend destination.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, u *models.User, returnURL string) {
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			h.Log.Warn("session cookie invalid, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		} else {
			h.Log.Error("session store error during login, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		}
	}

	// Set authenticated state
	sess.Values["is_authenticated"] = true
	sess.Values["user_id"] = u.ID.Hex()

	if err := sess.Save(r, w); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.redirectToFrontend(w, r, "/?error=session")
		return
	}

	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username),
		zap.Int("login_count", u.LoginCount))

	h.redirectToFrontend(w, r, urlutil.SafeReturn(returnURL, "", "/dashboard"))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/logout                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogout destroys the session. It answers 200 even when the cookie
// failed to decode: the client is signing out either way.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Debug("logout with undecodable session cookie", zap.Error(err))
	}

	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	if err := sess.Save(r, w); err != nil {
		h.Log.Warn("failed to clear session on logout", zap.Error(err))
	}

	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/me                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeMe returns the signed-in user's full record. Mounted behind
// RequireSignedIn, so an anonymous request never reaches here.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
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

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.Log.Error("failed to load current user", zap.Error(err), zap.String("user_id", su.ID))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Respond(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// redirectToFrontend sends the browser to a path on the frontend origin.
func (h *Handler) redirectToFrontend(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, h.FrontendURL+path, http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
