// internal/domain/models/profileview.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileView records one visit to a public profile by a non-owner.
// The owner's stats page reports the total count.
type ProfileView struct {
	ID       string             `bson:"_id" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	ViewerIP string             `bson:"viewer_ip" json:"viewer_ip"`
	ViewedAt time.Time          `bson:"viewed_at" json:"viewed_at"`
}
