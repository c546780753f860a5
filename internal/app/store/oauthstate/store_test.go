package oauthstate_test

import (
	"testing"
	"time"

	"github.com/lumenlabs/profilehub/internal/app/store/oauthstate"
	"github.com/lumenlabs/profilehub/internal/testutil"
)

func TestStore_SaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "test-state-123"
	if err := store.Save(ctx, state, "/dashboard", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("expected state to be valid")
	}
	if returnURL != "/dashboard" {
		t.Errorf("expected return URL '/dashboard', got %q", returnURL)
	}
}

func TestStore_Validate_OneTimeUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "one-time-state"
	if err := store.Save(ctx, state, "", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, valid, err := store.Validate(ctx, state); err != nil || !valid {
		t.Fatalf("first Validate = (%v, %v), want valid", valid, err)
	}

	// Second use must fail: the token is consumed on first validation.
	_, valid, err := store.Validate(ctx, state)
	if err != nil {
		t.Fatalf("second Validate errored: %v", err)
	}
	if valid {
		t.Error("expected consumed state to be invalid")
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "expired-state"
	if err := store.Save(ctx, state, "", time.Now().Add(-1*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, valid, err := store.Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate errored: %v", err)
	}
	if valid {
		t.Error("expected expired state to be invalid")
	}
}

func TestStore_Validate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Validate(ctx, "never-saved")
	if err != nil {
		t.Fatalf("Validate errored: %v", err)
	}
	if valid {
		t.Error("expected unknown state to be invalid")
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "old", "", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "fresh", "", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	if _, valid, _ := store.Validate(ctx, "fresh"); !valid {
		t.Error("expected fresh state to survive cleanup")
	}
}
