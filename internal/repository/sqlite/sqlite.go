// Package sqlite implements the repository interfaces on SQLite.
//
// We use modernc.org/sqlite rather than mattn/go-sqlite3 because it is a
// pure Go translation of SQLite — no CGo, no C compiler, painless
// cross-compilation. Tests open ":memory:" databases.
//
// SCHEMA NOTES:
// The follow graph and the like sets are edge tables, not lists embedded in
// the user/post rows. The symmetric invariant "A follows B ⇔ B is followed
// by A" holds by construction: both views are reads over the same row in
// follows. The UNIQUE pair keys also mean two racing follow (or like) writes
// cannot double-append — the second insert fails instead.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and exposes one store per entity.
// The stores share the pool; each implements one repository interface
// (see the compile-time checks in user.go, post.go, follow.go, like.go).
type DB struct {
	conn *sql.DB

	Users   *UserStore
	Posts   *PostStore
	Follows *FollowStore
	Likes   *LikeStore
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own empty
	// database, so pin the pool to a single connection there.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open is lazy — Ping forces a real connection so a bad path
	// surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — important
	// for a web server where many requests hit the DB at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. We rely on them: likes
	// cascade away with their post, and follow edges reference real users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:    conn,
		Users:   &UserStore{conn: conn},
		Posts:   &PostStore{conn: conn},
		Follows: &FollowStore{conn: conn},
		Likes:   &LikeStore{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent — safe to run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The (author_id, created_at DESC) index serves the feed query:
	// filter by author set, order by recency.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			author_id  TEXT NOT NULL REFERENCES users(id),
			content    TEXT NOT NULL,
			media_url  TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_author_created
			ON posts(author_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	// One row per follow edge. The composite primary key is the uniqueness
	// guarantee: a pair can never be appended twice.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL REFERENCES users(id),
			followed_id TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followed_id)
		);
		CREATE INDEX IF NOT EXISTS idx_follows_followed ON follows(followed_id);
	`)
	if err != nil {
		return fmt.Errorf("creating follows table: %w", err)
	}

	// Likes cascade with their post, so deleting a post cleans up its like
	// rows in the same statement.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (post_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_likes_user ON likes(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating likes table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE (or primary key)
// constraint failure. SQLite reports both with the same message prefix, and
// matching the message keeps us independent of driver error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
