// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	activityfeature "github.com/lumenlabs/profilehub/internal/app/features/activity"
	authgooglefeature "github.com/lumenlabs/profilehub/internal/app/features/authgoogle"
	healthfeature "github.com/lumenlabs/profilehub/internal/app/features/health"
	publicprofilefeature "github.com/lumenlabs/profilehub/internal/app/features/publicprofile"
	usersfeature "github.com/lumenlabs/profilehub/internal/app/features/users"
	activitystore "github.com/lumenlabs/profilehub/internal/app/store/activity"
	"github.com/lumenlabs/profilehub/internal/app/store/oauthstate"
	"github.com/lumenlabs/profilehub/internal/app/store/profileviews"
	userstore "github.com/lumenlabs/profilehub/internal/app/store/users"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ProfileHub mounts the health check,
// the Google OAuth flow, and the JSON API:
//
//	/health                     liveness + Mongo ping
//	/auth/google[...callback]   OAuth round trip
//	/auth/logout, /auth/me      session endpoints
//	/api/users/me[...]          account management
//	/api/profile/{username}     public profiles
//	/api/activity               activity timeline
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Profile edits and account deletion take effect
	// immediately rather than at next login.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	users := userstore.New(deps.MongoDatabase)
	activities := activitystore.New(deps.MongoDatabase)
	views := profileviews.New(deps.MongoDatabase)
	states := oauthstate.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Google OAuth and session endpoints
	authHandler := authgooglefeature.NewHandler(
		sessionMgr, users, activities, states,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.FrontendURL,
		logger,
	)
	r.Mount("/auth", authgooglefeature.Routes(authHandler))

	// Account management (signed-in only)
	usersHandler := usersfeature.NewHandler(sessionMgr, users, activities, views, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	// Public profiles (no session required)
	profileHandler := publicprofilefeature.NewHandler(users, views, logger)
	r.Mount("/api/profile", publicprofilefeature.Routes(profileHandler))

	// Activity timeline (signed-in only)
	activityHandler := activityfeature.NewHandler(sessionMgr, activities, logger)
	r.Mount("/api/activity", activityfeature.Routes(activityHandler))

	return r, nil
}
