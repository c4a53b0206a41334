// Package profile resolves author identities for feed decoration.
package profile

import "time"

// Fallback identity for authors whose profile no longer exists. Posts
// outlive accounts, so the feed renders a placeholder instead of failing.
const (
	DefaultName     = "Anonim"
	DefaultUsername = "anonim"
)

// Profile is the public-facing slice of a user account.
type Profile struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Username  string    `json:"username" bson:"username"`
	AvatarURL string    `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty" bson:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Anonymous returns the placeholder profile for the given author ID.
func Anonymous(id string) Profile {
	return Profile{
		ID:       id,
		Name:     DefaultName,
		Username: DefaultUsername,
	}
}
