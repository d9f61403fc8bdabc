package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// Validation and pagination constants.
const (
	MaxContentLength = 280 // characters, counted as runes
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// FeedMode selects which authors a feed page covers.
type FeedMode string

const (
	// FeedFollowing shows posts from people the viewer follows, plus the
	// viewer's own posts.
	FeedFollowing FeedMode = "following"
	// FeedAll is the global firehose: no author filter.
	FeedAll FeedMode = "all"
	// FeedUser shows a single user's posts (profile timeline).
	FeedUser FeedMode = "user"
)

// ParseFeedMode maps the HTTP `type` query parameter to a FeedMode.
// Unknown or empty values fall back to the following feed, matching the
// home-feed default.
func ParseFeedMode(s string) FeedMode {
	switch FeedMode(s) {
	case FeedAll, FeedUser, FeedFollowing:
		return FeedMode(s)
	default:
		return FeedFollowing
	}
}

// MediaCleaner removes externally hosted media. Implemented by
// media.Client; nil disables cleanup (the server runs fine without
// Cloudinary credentials).
type MediaCleaner interface {
	Delete(ctx context.Context, mediaURL string) error
}

// FeedService owns the post lifecycle, the like toggle, and feed reads.
type FeedService struct {
	posts   repository.PostRepository
	likes   repository.LikeRepository
	follows repository.FollowRepository
	users   repository.UserRepository
	media   MediaCleaner // may be nil
	logger  *slog.Logger
}

func NewFeedService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	media MediaCleaner,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		posts:   posts,
		likes:   likes,
		follows: follows,
		users:   users,
		media:   media,
		logger:  logger,
	}
}

// Feed returns one page of posts for the viewer.
//
// The author filter depends on the mode:
//   - following: viewer's following set ∪ {viewer} — your own posts always
//     show up in your home feed
//   - all: no filter
//   - user: exactly {targetUserID}, regardless of follow relationships
//
// Page/limit outside their valid range fall back to 1 and 10; limit is
// capped at MaxPageLimit. hasMore is skip+returned < total.
func (s *FeedService) Feed(ctx context.Context, viewerID string, page, limit int, mode FeedMode, targetUserID string) (*model.FeedPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	var authorIDs []string
	switch mode {
	case FeedFollowing:
		// Confirm the viewer exists before building their feed — a feed
		// for a ghost viewer is a NotFound, not an empty page.
		if _, err := s.users.GetByID(ctx, viewerID); err != nil {
			return nil, err
		}
		following, err := s.follows.Following(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("fetching following set: %w", err)
		}
		authorIDs = append(following, viewerID)
	case FeedUser:
		targetUserID = strings.TrimSpace(targetUserID)
		if targetUserID == "" {
			return nil, apperror.ValidationFailed("userId", "userId is required for a user feed")
		}
		authorIDs = []string{targetUserID}
	case FeedAll:
		authorIDs = nil
	default:
		return nil, apperror.ValidationFailed("type", fmt.Sprintf("unknown feed type %q", mode))
	}

	skip := (page - 1) * limit
	q := repository.FeedQuery{AuthorIDs: authorIDs, Limit: limit, Offset: skip}

	posts, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing feed posts: %w", err)
	}
	total, err := s.posts.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("counting feed posts: %w", err)
	}

	annotated, err := s.annotate(ctx, posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &model.FeedPage{
		Posts:   annotated,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: skip+len(posts) < total,
	}, nil
}

// GetPost returns a single post annotated for the viewer.
// viewerID may be empty; isLiked is then false.
func (s *FeedService) GetPost(ctx context.Context, postID, viewerID string) (*model.FeedPost, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	annotated, err := s.annotate(ctx, []model.PostWithAuthor{*post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &annotated[0], nil
}

// CreatePost validates and saves a new post, returning it annotated (zero
// likes, not liked) the same way the feed would render it.
func (s *FeedService) CreatePost(ctx context.Context, authorID, content, mediaURL string) (*model.FeedPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "post content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("post content must be %d characters or less", MaxContentLength))
	}

	post := &model.Post{
		AuthorID: authorID,
		Content:  content,
		MediaURL: strings.TrimSpace(mediaURL),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("authorID", authorID),
	)

	return s.GetPost(ctx, post.ID, authorID)
}

// DeletePost removes a post. Only the author may delete it; like rows go
// with it.
//
// If the post referenced hosted media, cleanup is requested best-effort:
// a Cloudinary failure is logged and the deletion still succeeds — an
// orphaned file is annoying, a phantom post is a bug.
func (s *FeedService) DeletePost(ctx context.Context, postID, requesterID string) error {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return apperror.Forbidden("you can only delete your own posts")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	if post.MediaURL != "" && s.media != nil {
		if err := s.media.Delete(ctx, post.MediaURL); err != nil {
			s.logger.Warn("media cleanup failed",
				slog.String("postID", postID),
				slog.String("mediaURL", post.MediaURL),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("post deleted",
		slog.String("id", postID),
		slog.String("authorID", requesterID),
	)
	return nil
}

// ToggleLike flips whether userID likes postID and returns the new state:
// true if the post is now liked, false if now unliked. Two calls in a row
// always restore the original state.
func (s *FeedService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return false, apperror.ValidationFailed("id", "post ID is required")
	}

	// The post must exist — liking a deleted post is a NotFound.
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return false, err
	}

	liked, err := s.likes.Has(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("checking like state: %w", err)
	}

	if liked {
		if err := s.likes.Remove(ctx, postID, userID); err != nil {
			return false, fmt.Errorf("removing like: %w", err)
		}
		return false, nil
	}

	if err := s.likes.Add(ctx, postID, userID); err != nil {
		return false, fmt.Errorf("adding like: %w", err)
	}
	return true, nil
}

// annotate turns stored posts into viewer-specific feed posts: author
// projected to public fields, like count attached, isLiked relative to the
// viewer. One like-stats query covers the whole page.
func (s *FeedService) annotate(ctx context.Context, posts []model.PostWithAuthor, viewerID string) ([]model.FeedPost, error) {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	stats, err := s.likes.Stats(ctx, ids, viewerID)
	if err != nil {
		return nil, fmt.Errorf("fetching like stats: %w", err)
	}

	annotated := make([]model.FeedPost, len(posts))
	for i, p := range posts {
		st := stats[p.ID] // zero value for posts with no likes
		annotated[i] = model.FeedPost{
			ID:         p.ID,
			Content:    p.Content,
			MediaURL:   p.MediaURL,
			Author:     p.Author,
			LikesCount: st.Count,
			IsLiked:    st.IsLiked,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		}
	}
	return annotated, nil
}
