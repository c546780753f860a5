package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumenlabs/profilehub/internal/app/features/users"
	activitystore "github.com/lumenlabs/profilehub/internal/app/store/activity"
	"github.com/lumenlabs/profilehub/internal/app/store/profileviews"
	userstore "github.com/lumenlabs/profilehub/internal/app/store/users"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"github.com/lumenlabs/profilehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func newTestHandler(t *testing.T) (*users.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := users.NewHandler(
		newSessionManager(t),
		userstore.New(db),
		activitystore.New(db),
		profileviews.New(db),
		zap.NewNop(),
	)
	return h, testutil.NewFixtures(t, db)
}

// bareHandler builds a handler with no database behind it, for exercising
// legs that bail out before any store call.
func bareHandler(t *testing.T) *users.Handler {
	t.Helper()
	return users.NewHandler(newSessionManager(t), nil, nil, nil, zap.NewNop())
}

func asUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{ID: u.ID.Hex(), Username: u.Username})
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return got
}

func TestServeGetMe(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	req := asUser(httptest.NewRequest("GET", "/api/users/me", nil), u)
	rec := httptest.NewRecorder()
	h.ServeGetMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got := decodeUser(t, rec)
	if got["username"] != "ada" {
		t.Errorf("username = %v, want ada", got["username"])
	}
}

func TestServeGetMe_Unauthenticated(t *testing.T) {
	h := bareHandler(t)

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	rec := httptest.NewRecorder()
	h.ServeGetMe(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestServeUpdateProfile_Partial(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	body := strings.NewReader(`{"bio":"Analytical engines"}`)
	req := asUser(httptest.NewRequest("PUT", "/api/users/me", body), u)
	rec := httptest.NewRecorder()
	h.ServeUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got := decodeUser(t, rec)
	if got["bio"] != "Analytical engines" {
		t.Errorf("bio = %v, want updated value", got["bio"])
	}
	if got["name"] != "Ada Lovelace" {
		t.Errorf("name = %v, want untouched", got["name"])
	}
}

func TestServeUpdateProfile_LogsActivity(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	body := strings.NewReader(`{"location":"London"}`)
	req := asUser(httptest.NewRequest("PUT", "/api/users/me", body), u)
	rec := httptest.NewRecorder()
	h.ServeUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	entries, err := activitystore.New(fx.DB()).Recent(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) == 0 || entries[0].Action != "Updated profile" {
		t.Errorf("expected 'Updated profile' activity entry, got %+v", entries)
	}
}

func TestServeUpdateProfile_InvalidPhone(t *testing.T) {
	h := bareHandler(t)

	body := strings.NewReader(`{"phone":"abc-123"}`)
	req := auth.WithTestUser(httptest.NewRequest("PUT", "/api/users/me", body),
		&auth.SessionUser{ID: "64b5f0c8a7e9d2f1b3c4a5e6"})
	rec := httptest.NewRecorder()
	h.ServeUpdateProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid phone number") {
		t.Errorf("body = %q, want phone field error", rec.Body.String())
	}
}

func TestServeUpdateProfile_PhoneClassAccepted(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	body := strings.NewReader(`{"phone":"+1 (555) 123-4567"}`)
	req := asUser(httptest.NewRequest("PUT", "/api/users/me", body), u)
	rec := httptest.NewRecorder()
	h.ServeUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got := decodeUser(t, rec)
	if got["phone"] != "+1 (555) 123-4567" {
		t.Errorf("phone = %v, want the submitted number", got["phone"])
	}
}

func TestServeUpdateUsername_TooShort(t *testing.T) {
	h := bareHandler(t)

	body := strings.NewReader(`{"username":"ab"}`)
	req := auth.WithTestUser(httptest.NewRequest("PUT", "/api/users/me/username", body),
		&auth.SessionUser{ID: "64b5f0c8a7e9d2f1b3c4a5e6"})
	rec := httptest.NewRecorder()
	h.ServeUpdateUsername(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "username must be 3-50 characters") {
		t.Errorf("body = %q, want length error", rec.Body.String())
	}
}

func TestServeUpdateUsername_TrimmedBeforeLengthCheck(t *testing.T) {
	h := bareHandler(t)

	// 2 meaningful chars padded with spaces still fails
	body := strings.NewReader(`{"username":"  ab  "}`)
	req := auth.WithTestUser(httptest.NewRequest("PUT", "/api/users/me/username", body),
		&auth.SessionUser{ID: "64b5f0c8a7e9d2f1b3c4a5e6"})
	rec := httptest.NewRecorder()
	h.ServeUpdateUsername(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestServeUpdateUsername_Success(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	body := strings.NewReader(`{"username":"Countess"}`)
	req := asUser(httptest.NewRequest("PUT", "/api/users/me/username", body), u)
	rec := httptest.NewRecorder()
	h.ServeUpdateUsername(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got := decodeUser(t, rec)
	if got["username"] != "countess" {
		t.Errorf("username = %v, want countess (normalized)", got["username"])
	}

	entries, err := activitystore.New(fx.DB()).Recent(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) == 0 || entries[0].Action != "Changed username to countess" {
		t.Errorf("expected username-change activity entry, got %+v", entries)
	}
}

func TestServeUpdateUsername_Conflict(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Collision detection rides on the unique index
	_, err := fx.DB().Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("failed to create username index: %v", err)
	}

	fx.CreateUser(ctx, "g-1", "Grace Hopper", "grace@example.com", "grace")
	u := fx.CreateUser(ctx, "g-2", "Ada Lovelace", "ada@example.com", "ada")

	body := strings.NewReader(`{"username":"grace"}`)
	req := asUser(httptest.NewRequest("PUT", "/api/users/me/username", body), u)
	rec := httptest.NewRecorder()
	h.ServeUpdateUsername(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "username already taken") {
		t.Errorf("body = %q, want conflict error", rec.Body.String())
	}
}

func TestServeTogglePublic(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	req := asUser(httptest.NewRequest("PUT", "/api/users/me/toggle-public", nil), u)
	rec := httptest.NewRecorder()
	h.ServeTogglePublic(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got := decodeUser(t, rec)
	if got["is_public"] != true {
		t.Errorf("is_public = %v, want true after toggle", got["is_public"])
	}

	entries, err := activitystore.New(fx.DB()).Recent(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) == 0 || entries[0].Action != "Set profile to public" {
		t.Errorf("expected visibility activity entry, got %+v", entries)
	}
}

func TestServeDelete(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	acts := activitystore.New(fx.DB())
	if err := acts.Log(ctx, u.ID, "Logged in"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	views := profileviews.New(fx.DB())
	if err := views.Record(ctx, u.ID, "203.0.113.9"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	req := asUser(httptest.NewRequest("DELETE", "/api/users/me", nil), u)
	rec := httptest.NewRecorder()
	h.ServeDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "account permanently deleted") {
		t.Errorf("body = %q, want deletion message", rec.Body.String())
	}

	if _, err := userstore.New(fx.DB()).GetByID(ctx, u.ID); err != mongo.ErrNoDocuments {
		t.Errorf("user lookup after delete = %v, want ErrNoDocuments", err)
	}
	entries, err := acts.Recent(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no activity entries after delete, got %d", len(entries))
	}
	count, err := views.Count(ctx, u.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no profile views after delete, got %d", count)
	}
}

func TestServeStats(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Name + bio + phone + location populated
	u := fx.CreateUserWithProfile(ctx, "ada", false)

	views := profileviews.New(fx.DB())
	if err := views.Record(ctx, u.ID, "203.0.113.9"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	acts := activitystore.New(fx.DB())
	for _, action := range []string{"Account created", "Logged in", "Updated profile"} {
		if err := acts.Log(ctx, u.ID, action); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	req := asUser(httptest.NewRequest("GET", "/api/users/me/stats", nil), u)
	rec := httptest.NewRecorder()
	h.ServeStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		ProfileViews      int                  `json:"profile_views"`
		RecentActivity    []models.ActivityLog `json:"recent_activity"`
		ProfileCompletion int                  `json:"profile_completion"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got.ProfileViews != 1 {
		t.Errorf("profile_views = %d, want 1", got.ProfileViews)
	}
	if len(got.RecentActivity) != 3 {
		t.Errorf("recent_activity length = %d, want 3", len(got.RecentActivity))
	}
	if got.ProfileCompletion != 100 {
		t.Errorf("profile_completion = %d, want 100", got.ProfileCompletion)
	}
}

func TestServeStats_PartialCompletion(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Only name is set: 1 of 4 fields
	u := fx.CreateUser(ctx, "g-1", "Ada Lovelace", "ada@example.com", "ada")

	req := asUser(httptest.NewRequest("GET", "/api/users/me/stats", nil), u)
	rec := httptest.NewRecorder()
	h.ServeStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		ProfileCompletion int `json:"profile_completion"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got.ProfileCompletion != 25 {
		t.Errorf("profile_completion = %d, want 25", got.ProfileCompletion)
	}
}

func TestRoutes_RejectsAnonymous(t *testing.T) {
	h := bareHandler(t)
	router := users.Routes(h)

	req := httptest.NewRequest("GET", "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Errorf("body = %q, want unauthorized error", rec.Body.String())
	}
}
