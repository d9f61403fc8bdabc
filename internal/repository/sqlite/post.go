package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// compile-time check that *PostStore implements repository.PostRepository
var _ repository.PostRepository = (*PostStore)(nil)

// PostStore implements repository.PostRepository on the shared pool.
type PostStore struct {
	conn *sql.DB
}

// postColumns is the joined projection every post read uses: the post row
// plus the author's public fields. Doing the join in SQL replaces the
// "populate author then reshape" round trip with a single query.
const postColumns = `
	p.id, p.author_id, p.content, p.media_url, p.created_at, p.updated_at,
	u.username, u.avatar_url`

// Create inserts a new post. Generates the id and sets timestamps in-place
// on the caller's struct (pointer receiver pattern).
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.ID = xid.New().String()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, content, media_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.MediaURL,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	return nil
}

// GetByID returns a single post joined with its author.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (s *PostStore) GetByID(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = ?`,
		id,
	)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return post, nil
}

// List returns one feed window: newest first, tie-broken by id descending
// (xids embed the creation time, so equal timestamps still come back in
// insertion order).
func (s *PostStore) List(ctx context.Context, q repository.FeedQuery) ([]model.PostWithAuthor, error) {
	where, args := feedFilter(q)

	args = append(args, q.Limit, q.Offset)
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 `+where+`
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.PostWithAuthor{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Count returns the total number of posts matching the same filter List
// uses. The pair (List, Count) is what the feed service needs to compute
// hasMore.
func (s *PostStore) Count(ctx context.Context, q repository.FeedQuery) (int, error) {
	where, args := feedFilter(q)

	var total int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p `+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}

	return total, nil
}

// Delete removes a post. Like rows go with it via ON DELETE CASCADE.
// Returns apperror.ErrNotFound if the id didn't match anything — which is
// how a second delete of the same post fails.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// feedFilter builds the WHERE clause for a feed query.
// A nil author set means no filter; an empty set matches nothing.
func feedFilter(q repository.FeedQuery) (string, []any) {
	if q.AuthorIDs == nil {
		return "", nil
	}
	if len(q.AuthorIDs) == 0 {
		// No authors can match. "WHERE 1=0" keeps the query shape uniform.
		return "WHERE 1=0", nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.AuthorIDs)), ",")
	args := make([]any, len(q.AuthorIDs))
	for i, id := range q.AuthorIDs {
		args[i] = id
	}
	return "WHERE p.author_id IN (" + placeholders + ")", args
}

// scanner is the common subset of sql.Row and sql.Rows we scan from.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*model.PostWithAuthor, error) {
	var p model.PostWithAuthor
	err := s.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Content,
		&p.MediaURL,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Author.Username,
		&p.Author.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return &p, nil
}
