package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/microblog/internal/apperror"
)

func TestFollow_Symmetry(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	if err := db.Follows.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	// The one edge must be visible from both sides.
	following, err := db.Follows.Following(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Following() error = %v", err)
	}
	if len(following) != 1 || following[0] != bob.ID {
		t.Errorf("Following(alice) = %v, want [%s]", following, bob.ID)
	}

	aliceFollowers, aliceFollowing, err := db.Follows.Counts(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Counts(alice) error = %v", err)
	}
	if aliceFollowers != 0 || aliceFollowing != 1 {
		t.Errorf("Counts(alice) = (%d, %d), want (0, 1)", aliceFollowers, aliceFollowing)
	}

	bobFollowers, bobFollowing, err := db.Follows.Counts(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Counts(bob) error = %v", err)
	}
	if bobFollowers != 1 || bobFollowing != 0 {
		t.Errorf("Counts(bob) = (%d, %d), want (1, 0)", bobFollowers, bobFollowing)
	}
}

func TestFollow_Duplicate(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	if err := db.Follows.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("first Follow() error = %v", err)
	}

	err := db.Follows.Follow(ctx, alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Follow() error = %v, want ErrConflict", err)
	}
}

func TestFollow_MissingUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	ctx := context.Background()

	if err := db.Follows.Follow(ctx, alice.ID, "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Follow(alice, ghost) error = %v, want ErrNotFound", err)
	}
	if err := db.Follows.Follow(ctx, "ghost", alice.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Follow(ghost, alice) error = %v, want ErrNotFound", err)
	}
}

func TestUnfollow(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	if err := db.Follows.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if err := db.Follows.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}

	// Neither direction survives.
	following, _ := db.Follows.Following(ctx, alice.ID)
	if len(following) != 0 {
		t.Errorf("Following(alice) after unfollow = %v, want empty", following)
	}
	followers, _, err := db.Follows.Counts(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Counts(bob) error = %v", err)
	}
	if followers != 0 {
		t.Errorf("bob followers after unfollow = %d, want 0", followers)
	}
}

func TestUnfollow_NotFollowing(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	err := db.Follows.Unfollow(context.Background(), alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Unfollow() without edge error = %v, want ErrConflict", err)
	}
}

func TestIsFollowing(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	got, err := db.Follows.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if got {
		t.Error("IsFollowing() = true before any follow")
	}

	if err := db.Follows.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	got, err = db.Follows.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if !got {
		t.Error("IsFollowing() = false after follow")
	}

	// Follow edges are directed: bob does not follow alice.
	got, err = db.Follows.IsFollowing(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if got {
		t.Error("IsFollowing(bob, alice) = true, but the edge is directed")
	}
}
