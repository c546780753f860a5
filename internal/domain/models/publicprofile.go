// internal/domain/models/publicprofile.go
package models

// PublicProfile is the reduced projection of a User served to non-owner
// viewers. When IsPublic is false the service sends only the username;
// every other field stays empty regardless of what the user record holds.
type PublicProfile struct {
	IsPublic    bool   `json:"is_public"`
	Username    string `json:"username"`
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Image       string `json:"image,omitempty"`
	Skills      string `json:"skills,omitempty"`
	BannerImage string `json:"banner_image,omitempty"`
	ThemeColor  string `json:"theme_color,omitempty"`
}
