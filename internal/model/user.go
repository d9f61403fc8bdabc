// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash holds the bcrypt hash of the user's password — never the
// plaintext. The `json:"-"` tag guarantees it cannot leak into an API
// response even if a handler serialises the whole struct.
//
// The follow graph is NOT embedded here. Followers and following are rows in
// the follows edge table (see repository/sqlite), and the counts on Profile
// are derived from it. Keeping the graph out of the user record means there
// is no mirrored pair of lists to drift out of sync.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	AvatarURL    string    `json:"avatar"    db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Author is the public projection of a user attached to posts.
// Only id, username and avatar are ever exposed alongside a post.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// Profile is the public view of a user returned by GET /api/users/{id}.
// The counts are derived from the follows table. IsFollowing is relative to
// the viewer making the request — false for anonymous viewers and for a
// user viewing their own profile.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	AvatarURL      string    `json:"avatar"`
	FollowersCount int       `json:"followersCount"`
	FollowingCount int       `json:"followingCount"`
	IsFollowing    bool      `json:"isFollowing"`
	CreatedAt      time.Time `json:"createdAt"`
}
