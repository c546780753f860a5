// internal/app/store/profileviews/store.go
package profileviews

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages the profile_views collection. One document per visit to
// a public profile by a non-owner.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profile_views")}
}

// Record stores a single profile visit.
func (s *Store) Record(ctx context.Context, userID primitive.ObjectID, viewerIP string) error {
	view := models.ProfileView{
		ID:       uuid.NewString(),
		UserID:   userID,
		ViewerIP: viewerIP,
		ViewedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, view)
	return err
}

// Count returns the total number of recorded views for the user.
func (s *Store) Count(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}

// DeleteForUser removes every view record for the user. Called during
// account deletion.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
