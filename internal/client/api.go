// internal/client/api.go
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UserRecord mirrors the service's user document as served over JSON.
type UserRecord struct {
	ID          string    `json:"id"`
	GoogleID    string    `json:"google_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Image       string    `json:"image"`
	Username    string    `json:"username"`
	Bio         string    `json:"bio"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	Skills      string    `json:"skills"`
	BannerImage string    `json:"banner_image"`
	ThemeColor  string    `json:"theme_color"`
	IsPublic    bool      `json:"is_public"`
	LoginCount  int       `json:"login_count"`
	LastLoginAt time.Time `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicProfileView is the reduced projection served by the public profile
// endpoint. It deliberately has no email or phone fields, so withheld data
// cannot be rendered even if a server were to over-share.
type PublicProfileView struct {
	IsPublic    bool   `json:"is_public"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Image       string `json:"image"`
	Skills      string `json:"skills"`
	BannerImage string `json:"banner_image"`
	ThemeColor  string `json:"theme_color"`
}

// ProfileEdit is a partial profile update. Nil fields are left unchanged
// by the server; pointer-to-empty clears the field.
type ProfileEdit struct {
	Name     *string `json:"name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Stats is the dashboard aggregate returned by /api/users/me/stats.
type Stats struct {
	User              UserRecord      `json:"user"`
	ProfileViews      int64           `json:"profile_views"`
	RecentActivity    []ActivityEntry `json:"recent_activity"`
	ProfileCompletion int             `json:"profile_completion"`
}

// ActivityEntry is one row of the activity timeline.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// apiError is the service's error payload shape.
type apiError struct {
	Error string `json:"error"`
}

// Config configures the API transport.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// API is the HTTP transport for the ProfileHub service. The session
// credential is an HTTP cookie carried automatically by the client's jar.
type API struct {
	http *resty.Client
}

// NewAPI builds a transport against the given service origin.
func NewAPI(cfg Config) (*API, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetCookieJar(jar)

	return &API{http: cli}, nil
}

// SetSessionCookie installs a session cookie by hand, for callers that
// obtained one out of band (the CLI's --cookie flag).
func (a *API) SetSessionCookie(name, value string) {
	a.http.SetCookie(&http.Cookie{Name: name, Value: value, Path: "/"})
}

// GoogleLoginURL is where a browser should be sent to start the OAuth
// flow. The SDK cannot complete the round trip itself.
func (a *API) GoogleLoginURL() string {
	return a.http.BaseURL + "/auth/google"
}

// Me performs the identity lookup.
func (a *API) Me(ctx context.Context) (*UserRecord, error) {
	var u UserRecord
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&u).
		Get("/auth/me")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout destroys the server-side session.
func (a *API) Logout(ctx context.Context) error {
	resp, err := a.http.R().
		SetContext(ctx).
		Post("/auth/logout")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return a.mapError(resp)
}

// UpdateProfile applies a partial profile edit and returns the record as
// the server now holds it.
func (a *API) UpdateProfile(ctx context.Context, edit ProfileEdit) (*UserRecord, error) {
	var u UserRecord
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(edit).
		SetResult(&u).
		Put("/api/users/me")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUsername sets a new username.
func (a *API) UpdateUsername(ctx context.Context, username string) (*UserRecord, error) {
	var u UserRecord
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": username}).
		SetResult(&u).
		Put("/api/users/me/username")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return &u, nil
}

// TogglePublic flips the profile's visibility.
func (a *API) TogglePublic(ctx context.Context) (*UserRecord, error) {
	var u UserRecord
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&u).
		Put("/api/users/me/toggle-public")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteAccount permanently deletes the signed-in account.
func (a *API) DeleteAccount(ctx context.Context) error {
	resp, err := a.http.R().
		SetContext(ctx).
		Delete("/api/users/me")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return a.mapError(resp)
}

// Stats fetches the dashboard aggregate.
func (a *API) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&s).
		Get("/api/users/me/stats")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return &s, nil
}

// Activity fetches the recent activity timeline.
func (a *API) Activity(ctx context.Context) ([]ActivityEntry, error) {
	entries := []ActivityEntry{}
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&entries).
		Get("/api/activity")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return entries, nil
}

// PublicProfile fetches the public projection for a username.
func (a *API) PublicProfile(ctx context.Context, username string) (*PublicProfileView, error) {
	var p PublicProfileView
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&p).
		Get("/api/profile/" + username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := a.mapError(resp); err != nil {
		return nil, err
	}
	return &p, nil
}

// mapError converts a non-2xx response into the SDK's error taxonomy.
// The server's {error} message is preserved when the body carries one.
func (a *API) mapError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	msg := errorMessage(resp.Body())

	switch code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusConflict:
		return &MutationError{Status: code, Message: msg}
	default:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, code, msg)
	}
}

// errorMessage pulls the message out of an {error} payload, falling back
// to a generic string when the body is empty or not the expected shape.
func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return "request failed"
}
