// Package handler is the HTTP layer: it parses requests, calls services,
// and writes the standard response envelope. No business rules live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/service"
)

// refreshCookieName is the HttpOnly cookie carrying the refresh token.
// HttpOnly keeps it away from page JavaScript; SameSite=Strict keeps it off
// cross-site requests. The access token never touches a cookie — clients
// hold it in memory and send it as a bearer header.
const refreshCookieName = "refresh_token"

const refreshTokenMaxAge = 7 * 24 * time.Hour

// AuthHandler serves /api/auth: register, login, refresh, logout.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// userPayload is the user shape embedded in auth responses.
type userPayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

type authResponse struct {
	User        userPayload `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// BODY: {"username": "...", "email": "...", "password": "..."}
//
// On success: 201, refresh cookie set, body carries user + access token.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeData(w, http.StatusCreated, authResponse{
		User:        toUserPayload(result.User),
		AccessToken: result.AccessToken,
	})
}

// HandleLogin authenticates by email and password.
//
// HTTP: POST /api/auth/login
// BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeData(w, http.StatusOK, authResponse{
		User:        toUserPayload(result.User),
		AccessToken: result.AccessToken,
	})
}

// HandleRefresh exchanges the refresh cookie for a new access token.
//
// HTTP: POST /api/auth/refresh
//
// The browser sends the cookie automatically; no body required.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, apperror.Unauthorized("refresh token not provided"))
		return
	}

	accessToken, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

// HandleLogout clears the refresh cookie.
//
// HTTP: POST /api/auth/logout
//
// JWTs are stateless, so "logout" is deleting the client's ability to send
// them: the cookie dies here, the access token expires on its own within
// minutes.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeMessage(w, http.StatusOK, "logged out successfully")
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(refreshTokenMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		// Secure: true, // enable in production behind HTTPS
	})
}

func toUserPayload(u *model.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
