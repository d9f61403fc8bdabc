package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"strconv"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/service"
)

// PostHandler serves /api/posts: the feed, single posts, creation,
// deletion and the like toggle.
type PostHandler struct {
	feed   *service.FeedService
	logger *slog.Logger
}

func NewPostHandler(feed *service.FeedService, logger *slog.Logger) *PostHandler {
	return &PostHandler{feed: feed, logger: logger}
}

// HandleFeed returns one page of the feed.
//
// HTTP: GET /api/posts?page=1&limit=10&type={all|following|user}&userId=...
//
// Requires auth (the route is wrapped in RequireAuth). Invalid or missing
// page/limit silently fall back to their defaults — Atoi failing leaves
// zero, and the service treats anything below 1 as "use the default".
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	mode := service.ParseFeedMode(q.Get("type"))

	feed, err := h.feed.Feed(r.Context(), viewerID, page, limit, mode, q.Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, feed)
}

// HandleGetPost returns a single post.
//
// HTTP: GET /api/posts/{id}
//
// The route uses OptionalAuth: anonymous viewers see isLiked=false.
func (h *PostHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	post, err := h.feed.GetPost(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, post)
}

// HandleCreate publishes a new post.
//
// HTTP: POST /api/posts
// BODY: {"content": "...", "mediaUrl": "..."} (mediaUrl optional)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	authorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req struct {
		Content  string `json:"content"`
		MediaURL string `json:"mediaUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	post, err := h.feed.CreatePost(r.Context(), authorID, req.Content, req.MediaURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, post)
}

// HandleDelete removes the caller's own post.
//
// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.feed.DeletePost(r.Context(), chi.URLParam(r, "id"), requesterID); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "post deleted successfully")
}

// HandleToggleLike flips the caller's like on a post.
//
// HTTP: POST /api/posts/{id}/like
// RESPONSE: {"isLiked": true|false} — the NEW state.
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	isLiked, err := h.feed.ToggleLike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"isLiked": isLiked})
}
