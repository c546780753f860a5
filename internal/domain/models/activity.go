// internal/domain/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog is a single entry in a user's activity timeline
// ("Logged in", "Updated profile", "Changed username to …").
type ActivityLog struct {
	ID        string             `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Action    string             `bson:"action" json:"action"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
