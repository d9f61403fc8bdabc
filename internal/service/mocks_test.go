package service

// Hand-written in-memory mocks for the repository interfaces. One
// mockStore implements all four, mirroring how the sqlite.DB does, so a
// single fixture backs the auth, social and feed services in tests.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

type mockStore struct {
	users   map[string]*model.User
	posts   []*model.Post // insertion order == chronological order
	follows map[string]map[string]bool
	likes   map[string]map[string]bool
	nextID  int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:   make(map[string]*model.User),
		follows: make(map[string]map[string]bool),
		likes:   make(map[string]map[string]bool),
	}
}

// --- UserRepository ---

func (m *mockStore) Create(ctx context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("a user with this username or email already exists")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

// --- PostRepository (method names shadowed by Create above, so the post
// side lives on a wrapper) ---

type mockPosts struct{ store *mockStore }

func (m *mockPosts) Create(ctx context.Context, post *model.Post) error {
	m.store.nextID++
	post.ID = fmt.Sprintf("post-%d", m.store.nextID)
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	m.store.posts = append(m.store.posts, &stored)
	return nil
}

func (m *mockPosts) GetByID(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	for _, p := range m.store.posts {
		if p.ID == id {
			return m.store.withAuthor(p), nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (m *mockPosts) List(ctx context.Context, q repository.FeedQuery) ([]model.PostWithAuthor, error) {
	matched := m.store.matching(q)

	if q.Offset >= len(matched) {
		return []model.PostWithAuthor{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *mockPosts) Count(ctx context.Context, q repository.FeedQuery) (int, error) {
	return len(m.store.matching(q)), nil
}

func (m *mockPosts) Delete(ctx context.Context, id string) error {
	for i, p := range m.store.posts {
		if p.ID == id {
			m.store.posts = append(m.store.posts[:i], m.store.posts[i+1:]...)
			delete(m.store.likes, id)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

// matching returns posts newest-first with the author filter applied.
func (m *mockStore) matching(q repository.FeedQuery) []model.PostWithAuthor {
	allowed := map[string]bool{}
	for _, id := range q.AuthorIDs {
		allowed[id] = true
	}

	result := []model.PostWithAuthor{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		p := m.posts[i]
		if q.AuthorIDs != nil && !allowed[p.AuthorID] {
			continue
		}
		result = append(result, *m.withAuthor(p))
	}
	return result
}

func (m *mockStore) withAuthor(p *model.Post) *model.PostWithAuthor {
	author := model.Author{ID: p.AuthorID}
	if u, ok := m.users[p.AuthorID]; ok {
		author.Username = u.Username
		author.AvatarURL = u.AvatarURL
	}
	return &model.PostWithAuthor{Post: *p, Author: author}
}

// --- FollowRepository ---

func (m *mockStore) Follow(ctx context.Context, actorID, targetID string) error {
	if _, ok := m.users[actorID]; !ok {
		return apperror.NotFound("user", actorID)
	}
	if _, ok := m.users[targetID]; !ok {
		return apperror.NotFound("user", targetID)
	}
	if m.follows[actorID][targetID] {
		return apperror.Conflict("already following this user")
	}
	if m.follows[actorID] == nil {
		m.follows[actorID] = make(map[string]bool)
	}
	m.follows[actorID][targetID] = true
	return nil
}

func (m *mockStore) Unfollow(ctx context.Context, actorID, targetID string) error {
	if !m.follows[actorID][targetID] {
		return apperror.Conflict("not following this user")
	}
	delete(m.follows[actorID], targetID)
	return nil
}

func (m *mockStore) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	return m.follows[actorID][targetID], nil
}

func (m *mockStore) Following(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	for id := range m.follows[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockStore) Counts(ctx context.Context, userID string) (int, int, error) {
	followers := 0
	for _, targets := range m.follows {
		if targets[userID] {
			followers++
		}
	}
	return followers, len(m.follows[userID]), nil
}

// --- LikeRepository ---

type mockLikes struct{ store *mockStore }

func (m *mockLikes) Add(ctx context.Context, postID, userID string) error {
	if m.store.likes[postID] == nil {
		m.store.likes[postID] = make(map[string]bool)
	}
	m.store.likes[postID][userID] = true
	return nil
}

func (m *mockLikes) Remove(ctx context.Context, postID, userID string) error {
	delete(m.store.likes[postID], userID)
	return nil
}

func (m *mockLikes) Has(ctx context.Context, postID, userID string) (bool, error) {
	return m.store.likes[postID][userID], nil
}

func (m *mockLikes) Stats(ctx context.Context, postIDs []string, viewerID string) (map[string]repository.LikeStats, error) {
	stats := make(map[string]repository.LikeStats)
	for _, id := range postIDs {
		likers := m.store.likes[id]
		if len(likers) == 0 {
			continue
		}
		stats[id] = repository.LikeStats{
			Count:   len(likers),
			IsLiked: viewerID != "" && likers[viewerID],
		}
	}
	return stats, nil
}

// --- fixtures ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// addUser seeds a user directly, bypassing validation.
func (m *mockStore) addUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	if err := m.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return user
}

// recordedCleaner captures media cleanup calls for assertions.
type recordedCleaner struct {
	deleted []string
	err     error
}

func (r *recordedCleaner) Delete(ctx context.Context, mediaURL string) error {
	r.deleted = append(r.deleted, mediaURL)
	return r.err
}
