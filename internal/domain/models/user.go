// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account record created on first Google login.
//
// NOTE:
//   - Username is unique across all users and addressable via the public
//     profile route once set.
//   - Profile fields (bio, phone, location, skills) are optional; the
//     completion percentage shown to the owner is derived from them at
//     read time and never stored.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID string             `bson:"google_id" json:"google_id"`

	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	Image       string `bson:"image,omitempty" json:"image"`
	Username    string `bson:"username" json:"username"`
	Bio         string `bson:"bio,omitempty" json:"bio"`
	Phone       string `bson:"phone,omitempty" json:"phone"`
	Location    string `bson:"location,omitempty" json:"location"`
	Skills      string `bson:"skills,omitempty" json:"skills"`
	BannerImage string `bson:"banner_image,omitempty" json:"banner_image"`
	ThemeColor  string `bson:"theme_color,omitempty" json:"theme_color"`

	IsPublic bool `bson:"is_public" json:"is_public"`

	LoginCount  int       `bson:"login_count" json:"login_count"`
	LastLoginAt time.Time `bson:"last_login_at" json:"last_login_at"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
