package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/microblog/internal/repository"
)

// compile-time check that *LikeStore implements repository.LikeRepository
var _ repository.LikeRepository = (*LikeStore)(nil)

// LikeStore implements repository.LikeRepository on the shared pool.
type LikeStore struct {
	conn *sql.DB
}

// Add records that userID likes postID.
//
// INSERT OR IGNORE makes the write idempotent: the (post_id, user_id)
// primary key means a duplicate like — including two racing toggles from
// the same user — collapses to a single row rather than erroring or
// double-counting.
func (s *LikeStore) Add(ctx context.Context, postID, userID string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: liking post %s: %w", postID, err)
	}
	return nil
}

// Remove deletes the like row if present. Removing an absent like is a
// no-op — the toggle service decided the direction before calling us.
func (s *LikeStore) Remove(ctx context.Context, postID, userID string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unliking post %s: %w", postID, err)
	}
	return nil
}

// Has reports whether userID currently likes postID.
func (s *LikeStore) Has(ctx context.Context, postID, userID string) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?)`,
		postID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like on %s: %w", postID, err)
	}
	return exists, nil
}

// Stats annotates a page of posts for one viewer in a single query:
// like count per post, and whether the viewer is among the likers.
// Posts with no likes simply don't appear in the result map — callers
// treat a missing entry as {Count: 0, IsLiked: false}.
func (s *LikeStore) Stats(ctx context.Context, postIDs []string, viewerID string) (map[string]repository.LikeStats, error) {
	stats := make(map[string]repository.LikeStats, len(postIDs))
	if len(postIDs) == 0 {
		return stats, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(postIDs)), ",")
	args := make([]any, 0, len(postIDs)+1)
	args = append(args, viewerID)
	for _, id := range postIDs {
		args = append(args, id)
	}

	// MAX over the boolean works because the group has one row per liker:
	// it is 1 exactly when the viewer's row is in the group.
	rows, err := s.conn.QueryContext(ctx,
		`SELECT post_id, COUNT(*), MAX(user_id = ?)
		 FROM likes
		 WHERE post_id IN (`+placeholders+`)
		 GROUP BY post_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetching like stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			s      repository.LikeStats
		)
		if err := rows.Scan(&postID, &s.Count, &s.IsLiked); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like stats: %w", err)
		}
		stats[postID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating like stats: %w", err)
	}

	return stats, nil
}
