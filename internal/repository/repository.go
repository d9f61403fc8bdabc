// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage is the concrete implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/microblog/internal/model"
)

// FeedQuery scopes and paginates a feed read.
//
// AuthorIDs semantics:
//   - nil          → no author filter (global feed)
//   - []string{...} → only posts whose author is in the set
//   - empty slice  → matches nothing (an empty following set still shows
//     the viewer's own posts only because the service adds the viewer in)
type FeedQuery struct {
	AuthorIDs []string
	Limit     int
	Offset    int
}

type UserRepository interface {
	// Create inserts a new user. The repository fills in ID and timestamps.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID returns the post joined with its author's public fields.
	GetByID(ctx context.Context, id string) (*model.PostWithAuthor, error)
	List(ctx context.Context, q FeedQuery) ([]model.PostWithAuthor, error)
	Count(ctx context.Context, q FeedQuery) (int, error)
	Delete(ctx context.Context, id string) error
}

// FollowRepository manages the directed follow edges between users.
// An edge (A, B) means A follows B; both the follower and following views
// of the graph are reads over the same rows, so they cannot disagree.
type FollowRepository interface {
	// Follow inserts the edge actor→target in a single transaction.
	// Returns NotFound if either user is missing, Conflict if the edge exists.
	Follow(ctx context.Context, actorID, targetID string) error
	// Unfollow removes the edge. Returns Conflict if it doesn't exist.
	Unfollow(ctx context.Context, actorID, targetID string) error
	IsFollowing(ctx context.Context, actorID, targetID string) (bool, error)
	// Following returns the ids of everyone userID follows.
	Following(ctx context.Context, userID string) ([]string, error)
	// Counts returns (followers, following) for userID.
	Counts(ctx context.Context, userID string) (int, int, error)
}

// LikeStats is the per-post like annotation for one viewer.
type LikeStats struct {
	Count   int
	IsLiked bool
}

type LikeRepository interface {
	Add(ctx context.Context, postID, userID string) error
	Remove(ctx context.Context, postID, userID string) error
	Has(ctx context.Context, postID, userID string) (bool, error)
	// Stats returns like counts for each post id, plus whether viewerID liked
	// each one. viewerID may be empty (anonymous): IsLiked is then false.
	Stats(ctx context.Context, postIDs []string, viewerID string) (map[string]LikeStats, error)
}
