package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given identity fields and
// returns it. Profile fields start empty; use CreateUserWithProfile when
// a test needs them populated.
func (f *Fixtures) CreateUser(ctx context.Context, googleID, name, email, username string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		GoogleID:    googleID,
		Name:        name,
		Email:       email,
		Username:    username,
		LoginCount:  1,
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUserWithProfile inserts a test user with bio/phone/location set
// and the given visibility.
func (f *Fixtures) CreateUserWithProfile(ctx context.Context, username string, isPublic bool) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		GoogleID:    "google-" + username,
		Name:        "Fixture User",
		Email:       username + "@example.com",
		Username:    username,
		Bio:         "Fixture bio",
		Phone:       "+1 555 000 1111",
		Location:    "Testville",
		IsPublic:    isPublic,
		LoginCount:  1,
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
