package publicprofile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumenlabs/profilehub/internal/app/features/publicprofile"
	"github.com/lumenlabs/profilehub/internal/app/store/profileviews"
	userstore "github.com/lumenlabs/profilehub/internal/app/store/users"
	"github.com/lumenlabs/profilehub/internal/app/system/auth"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"github.com/lumenlabs/profilehub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*publicprofile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := publicprofile.NewHandler(userstore.New(db), profileviews.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func getProfile(h *publicprofile.Handler, req *http.Request, username string) *httptest.ResponseRecorder {
	req = testutil.WithChiURLParam(req, "username", username)
	rec := httptest.NewRecorder()
	h.ServeProfile(rec, req)
	return rec
}

func TestServeProfile_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/profile/nobody", nil)
	rec := getProfile(h, req, "nobody")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "user not found") {
		t.Errorf("body = %q, want not-found error", rec.Body.String())
	}
}

func TestServeProfile_PrivateHidesEverythingButUsername(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUserWithProfile(ctx, "ada", false)

	req := httptest.NewRequest("GET", "/api/profile/ada", nil)
	rec := getProfile(h, req, "ada")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got["is_public"] != false {
		t.Errorf("is_public = %v, want false", got["is_public"])
	}
	if got["username"] != "ada" {
		t.Errorf("username = %v, want ada", got["username"])
	}
	// omitempty must strip every profile field on the private leg
	for _, field := range []string{"name", "bio", "location", "image", "skills", "banner_image", "theme_color"} {
		if _, present := got[field]; present {
			t.Errorf("field %q leaked on a private profile", field)
		}
	}
}

func TestServeProfile_PublicFullProjection(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUserWithProfile(ctx, "ada", true)

	req := httptest.NewRequest("GET", "/api/profile/ada", nil)
	rec := getProfile(h, req, "ada")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got models.PublicProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !got.IsPublic {
		t.Error("is_public = false, want true")
	}
	if got.Name == "" || got.Bio == "" || got.Location == "" {
		t.Errorf("expected populated projection, got %+v", got)
	}
}

func TestServeProfile_OwnerSeesOwnPrivateProfile(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUserWithProfile(ctx, "ada", false)

	req := httptest.NewRequest("GET", "/api/profile/ada", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: u.ID.Hex(), Username: u.Username})
	rec := getProfile(h, req, "ada")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got models.PublicProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got.Bio == "" {
		t.Error("owner should see the full projection of their private profile")
	}
}

func TestServeProfile_RecordsViewFromNonOwner(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUserWithProfile(ctx, "ada", true)

	req := httptest.NewRequest("GET", "/api/profile/ada", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := getProfile(h, req, "ada")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	count, err := profileviews.New(fx.DB()).Count(ctx, u.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("view count = %d, want 1", count)
	}
}

func TestServeProfile_OwnerViewNotRecorded(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUserWithProfile(ctx, "ada", true)

	req := httptest.NewRequest("GET", "/api/profile/ada", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: u.ID.Hex(), Username: u.Username})
	rec := getProfile(h, req, "ada")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	count, err := profileviews.New(fx.DB()).Count(ctx, u.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("view count = %d, want 0 for owner views", count)
	}
}

func TestServeProfile_CaseInsensitiveLookup(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUserWithProfile(ctx, "ada", true)

	req := httptest.NewRequest("GET", "/api/profile/ADA", nil)
	rec := getProfile(h, req, "ADA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}
