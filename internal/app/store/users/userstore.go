// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/lumenlabs/profilehub/internal/app/system/normalize"
	"github.com/lumenlabs/profilehub/internal/app/system/sanitize"
	"github.com/lumenlabs/profilehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrUsernameTaken is returned when a username update collides with
// another user's username. Uniqueness is enforced by the index on
// users.username, so collisions surface as duplicate-key errors even
// under concurrent writers.
var ErrUsernameTaken = errors.New("username already taken")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleID loads a user by their Google account ID.
// Returns mongo.ErrNoDocuments when no account exists yet.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername loads a user by their (normalized) username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user on first Google login. The username is
// generated from the display name and retried on collision; login_count
// starts at 1 since creation happens during a successful login.
func (s *Store) Create(ctx context.Context, googleID, name, email, image string) (*models.User, error) {
	now := time.Now().UTC()
	u := models.User{
		ID:          primitive.NewObjectID(),
		GoogleID:    googleID,
		Name:        normalize.Name(name),
		Email:       normalize.Email(email),
		Image:       image,
		IsPublic:    false,
		LoginCount:  1,
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; attempt < 10; attempt++ {
		u.Username = generateUsername(u.Name)
		_, err := s.c.InsertOne(ctx, u)
		if err == nil {
			return &u, nil
		}
		if !wafflemongo.IsDup(err) {
			return nil, err
		}
		// Duplicate username; regenerate and retry.
	}
	return nil, fmt.Errorf("could not allocate a unique username for %q", u.Name)
}

// IncrementLogin bumps login_count and stamps last_login_at.
func (s *Store) IncrementLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"login_count": 1},
		"$set": bson.M{"last_login_at": now, "updated_at": now},
	})
	return err
}

// ProfileUpdate holds the owner-editable profile fields. Pointer fields
// distinguish "leave unchanged" (nil) from "set to empty" (&"").
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Phone       *string
	Location    *string
	Skills      *string
	BannerImage *string
	ThemeColor  *string
	IsPublic    *bool
}

// UpdateProfile applies a partial update and returns the record as the
// server now holds it. Text fields are sanitized before storage; callers
// must not assume their payload is echoed back verbatim.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}

	if upd.Name != nil {
		set["name"] = sanitize.Text(normalize.Name(*upd.Name))
	}
	if upd.Bio != nil {
		set["bio"] = sanitize.Text(*upd.Bio)
	}
	if upd.Phone != nil {
		set["phone"] = strings.TrimSpace(*upd.Phone)
	}
	if upd.Location != nil {
		set["location"] = sanitize.Text(*upd.Location)
	}
	if upd.Skills != nil {
		set["skills"] = sanitize.Text(*upd.Skills)
	}
	if upd.BannerImage != nil {
		set["banner_image"] = strings.TrimSpace(*upd.BannerImage)
	}
	if upd.ThemeColor != nil {
		set["theme_color"] = strings.TrimSpace(*upd.ThemeColor)
	}
	if upd.IsPublic != nil {
		set["is_public"] = *upd.IsPublic
	}

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdateUsername sets a new username. Returns ErrUsernameTaken when the
// unique index rejects the write.
func (s *Store) UpdateUsername(ctx context.Context, id primitive.ObjectID, username string) (*models.User, error) {
	set := bson.M{
		"username":   normalize.Username(username),
		"updated_at": time.Now().UTC(),
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// TogglePublic flips is_public and returns the updated record along with
// the new visibility value.
func (s *Store) TogglePublic(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := !u.IsPublic
	return s.UpdateProfile(ctx, id, ProfileUpdate{IsPublic: &pub})
}

// Delete permanently removes the user document. Related activity and
// profile-view records are cleaned up by the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// generateUsername derives a lowercase alphanumeric handle from the
// display name and appends a random 1..9999 suffix. Uniqueness is settled
// by the insert's unique index, not here.
func generateUsername(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	var b strings.Builder
	for _, c := range base {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	clean := b.String()
	if len(clean) > 15 {
		clean = clean[:15]
	}
	if clean == "" {
		clean = "user"
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9999))
	if err != nil {
		// crypto/rand failing is effectively unreachable; fall back to a
		// fixed suffix and let the collision retry loop sort it out.
		return clean + "1"
	}
	return fmt.Sprintf("%s%d", clean, n.Int64()+1)
}
