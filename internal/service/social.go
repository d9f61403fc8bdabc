// Package service contains the business logic layer.
//
// The layering follows the usual three-tier split:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services accept repository interfaces, not concrete types, so tests
// substitute in-memory mocks and handlers never see SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// SocialService owns the follow graph: follow/unfollow mutations and the
// derived profile view.
type SocialService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

func NewSocialService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	logger *slog.Logger,
) *SocialService {
	return &SocialService{
		users:   users,
		follows: follows,
		logger:  logger,
	}
}

// Follow makes actor follow target.
//
// Rules: you cannot follow yourself, both users must exist, and following
// someone twice is a conflict. Existence and duplicate detection happen in
// the repository's single transactional write, so there is no window where
// only half the relationship is recorded.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID string) error {
	actorID, targetID, err := followPair(actorID, targetID)
	if err != nil {
		return err
	}

	if err := s.follows.Follow(ctx, actorID, targetID); err != nil {
		return err
	}

	s.logger.Info("user followed",
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}

// Unfollow removes the actor→target edge. Unfollowing someone you don't
// follow is a conflict, mirroring the duplicate-follow rule.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID string) error {
	actorID, targetID, err := followPair(actorID, targetID)
	if err != nil {
		return err
	}

	if err := s.follows.Unfollow(ctx, actorID, targetID); err != nil {
		return err
	}

	s.logger.Info("user unfollowed",
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}

// Profile returns the public view of a user: identity fields plus derived
// follower/following counts and whether the viewer follows them.
//
// viewerID may be empty (anonymous request); isFollowing is then false, as
// it is when a user views their own profile.
func (s *SocialService) Profile(ctx context.Context, userID, viewerID string) (*model.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	followers, following, err := s.follows.Counts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching follow counts for %s: %w", userID, err)
	}

	isFollowing := false
	if viewerID != "" && viewerID != userID {
		isFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, fmt.Errorf("checking follow state for %s: %w", userID, err)
		}
	}

	return &model.Profile{
		ID:             user.ID,
		Username:       user.Username,
		AvatarURL:      user.AvatarURL,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		CreatedAt:      user.CreatedAt,
	}, nil
}

// followPair validates the (actor, target) pair shared by Follow and
// Unfollow.
func followPair(actorID, targetID string) (string, string, error) {
	actorID = strings.TrimSpace(actorID)
	targetID = strings.TrimSpace(targetID)

	if actorID == "" || targetID == "" {
		return "", "", apperror.ValidationFailed("id", "user ID is required")
	}
	if actorID == targetID {
		return "", "", apperror.ValidationFailed("id", "you cannot follow yourself")
	}
	return actorID, targetID, nil
}
