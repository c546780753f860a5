// internal/app/store/activity/store.go
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the activity_logs collection: the per-user timeline of
// logins, profile edits, and visibility changes.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_logs")}
}

// Log appends an entry to the user's timeline. Failures are for the
// caller to swallow; activity logging never blocks the triggering action.
func (s *Store) Log(ctx context.Context, userID primitive.ObjectID, action string) error {
	entry := models.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// Recent returns up to limit entries for the user, newest first.
// The result is never nil; an empty timeline yields an empty slice.
func (s *Store) Recent(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.ActivityLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	entries := []models.ActivityLog{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteForUser removes every entry for the user. Called during account
// deletion.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
