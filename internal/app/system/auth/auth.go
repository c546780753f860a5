// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the identity injected into r.Context() for signed-in
// requests. It is re-fetched from the database on every request (via the
// UserFetcher) so profile edits and account deletion take effect
// immediately rather than at next login.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	Username string
}

// UserFetcher loads fresh user data for a session's user ID.
// Returning nil means "treat this session as signed out" (user deleted,
// bad ID, or a lookup failure).
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie session store and the auth middleware.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	log         *zap.Logger
	fetcher     UserFetcher
}

// NewSessionManager builds a SessionManager around a signed cookie store.
//
// In production (secure=true) cookies are Secure + SameSite=None so the
// SPA can call the API cross-site over HTTPS. In local dev over
// http://localhost, secure=false keeps cookies accepted with SameSite=Lax.
func NewSessionManager(sessionKey, sessionName, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		store:       store,
		sessionName: sessionName,
		log:         logger,
	}, nil
}

// SetUserFetcher installs the loader used by LoadSessionUser to pull fresh
// user data per request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// Store exposes the underlying cookie store (used by logout to mirror
// cookie options onto the deletion cookie).
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// GetSession returns the request's session, or a fresh one plus the decode
// error when the cookie is invalid.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.sessionName)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user from the request context, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// LoadSessionUser injects the user into context if they are signed in.
// A missing or undecodable cookie is not an error; the request simply
// proceeds anonymously.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.sessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		isAuth, _ := sess.Values[isAuthKey].(bool)
		userID, _ := sess.Values[userIDKey].(string)
		if !isAuth || userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sm.fetcher != nil {
			if u := sm.fetcher.FetchUser(r.Context(), userID); u != nil {
				r = withUser(r, u)
			}
			// A nil fetch result leaves the request anonymous: the user
			// was deleted or the lookup failed, which downstream treats
			// identically to "not signed in".
		} else {
			r = withUser(r, &SessionUser{ID: userID})
		}

		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). This API serves a browser SPA over JSON, so the
// unauthorized leg is a plain 401 payload; redirecting is the client's
// route guard's job.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a SessionUser into the request context.
// It exists so handler tests can simulate what LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}
