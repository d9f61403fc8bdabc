package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/service"
)

// UserHandler serves /api/users: profiles and follow/unfollow.
type UserHandler struct {
	social *service.SocialService
	logger *slog.Logger
}

func NewUserHandler(social *service.SocialService, logger *slog.Logger) *UserHandler {
	return &UserHandler{social: social, logger: logger}
}

// HandleProfile returns a user's public profile with derived follower and
// following counts.
//
// HTTP: GET /api/users/{id}
//
// The route uses OptionalAuth: isFollowing is computed relative to the
// viewer when one is present, false otherwise.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.social.Profile(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}

// HandleFollow makes the caller follow the user in the path.
//
// HTTP: POST /api/users/{id}/follow
func (h *UserHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.social.Follow(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "user followed successfully")
}

// HandleUnfollow removes the caller's follow of the user in the path.
//
// HTTP: DELETE /api/users/{id}/follow
func (h *UserHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.social.Unfollow(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "user unfollowed successfully")
}
