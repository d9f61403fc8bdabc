package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/repository"
)

// compile-time check that *FollowStore implements repository.FollowRepository
var _ repository.FollowRepository = (*FollowStore)(nil)

// FollowStore implements repository.FollowRepository on the shared pool.
type FollowStore struct {
	conn *sql.DB
}

// Follow inserts the edge actor→target.
//
// SINGLE WRITE: both views of the relationship (A's following list, B's
// followers list) are reads over this one edge row, so the graph can never
// be half-updated. The whole operation runs in one transaction: verify
// both users exist, then insert.
//
// The composite primary key on (follower_id, followed_id) closes the race
// where two concurrent follows both pass the duplicate check — the second
// insert fails with a constraint violation and is reported as a Conflict.
func (s *FollowStore) Follow(ctx context.Context, actorID, targetID string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning follow tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range []string{actorID, targetID} {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("sqlite: checking user %s: %w", id, err)
		}
		if !exists {
			return apperror.NotFound("user", id)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, ?)`,
		actorID, targetID, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("already following this user")
		}
		return fmt.Errorf("sqlite: inserting follow %s→%s: %w", actorID, targetID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing follow: %w", err)
	}

	return nil
}

// Unfollow removes the edge actor→target.
// Zero rows affected means there was no such edge — a Conflict, matching
// the "not currently following" rule.
func (s *FollowStore) Unfollow(ctx context.Context, actorID, targetID string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`,
		actorID, targetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow %s→%s: %w", actorID, targetID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Conflict("not following this user")
	}

	return nil
}

// IsFollowing reports whether the edge actor→target exists.
func (s *FollowStore) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followed_id = ?)`,
		actorID, targetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow %s→%s: %w", actorID, targetID, err)
	}
	return exists, nil
}

// Following returns the ids of everyone userID follows. This is the author
// set the feed service unions with the viewer's own id.
func (s *FollowStore) Following(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT followed_id FROM follows WHERE follower_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing following for %s: %w", userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning followed id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating following: %w", err)
	}

	return ids, nil
}

// Counts returns (followers, following) for userID in one round trip.
func (s *FollowStore) Counts(ctx context.Context, userID string) (int, int, error) {
	var followers, following int
	err := s.conn.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM follows WHERE followed_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		userID, userID,
	).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("sqlite: counting follows for %s: %w", userID, err)
	}
	return followers, following, nil
}
