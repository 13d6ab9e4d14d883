package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evanmoss/sharelist/internal/auth"
	"github.com/evanmoss/sharelist/internal/middleware"
	"github.com/evanmoss/sharelist/internal/store"
)

const (
	sessionTTL         = 7 * 24 * time.Hour
	extendedSessionTTL = 90 * 24 * time.Hour
)

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	lists    *store.ListStore
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, lists *store.ListStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, lists: lists, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("register lookup failed", "error", err)
		writeError(w, err)
		return
	}
	if existing != nil {
		writeFail(w, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password failed", "error", err)
		writeError(w, err)
		return
	}

	user, err := h.users.Create(req.Username, string(hash))
	if err != nil {
		h.logger.Error("create user failed", "error", err)
		writeError(w, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeSuccess(w, http.StatusCreated, map[string]any{"message": "User registered successfully"})
}

type loginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	KeepLoggedIn bool   `json:"keepLoggedIn"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("login lookup failed", "error", err)
		writeError(w, err)
		return
	}
	if user == nil {
		h.logger.Warn("login with unknown username")
		writeFail(w, http.StatusUnauthorized, "Incorrect username.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("login with wrong password", "user_id", user.ID)
		writeFail(w, http.StatusUnauthorized, "Incorrect password.")
		return
	}

	ttl := sessionTTL
	if req.KeepLoggedIn {
		ttl = extendedSessionTTL
	}
	sess, err := h.sessions.Create(user.ID, ttl)
	if err != nil {
		h.logger.Error("create session failed", "error", err)
		writeError(w, err)
		return
	}

	// The client lands on the most recently updated list after login.
	currentListID, err := h.lists.RecentListID(user.ID)
	if err != nil {
		h.logger.Error("recent list lookup failed", "error", err)
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user logged in", "user_id", user.ID)
	writeSuccess(w, http.StatusOK, map[string]any{
		"username":      user.Username,
		"currentListId": currentListID,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

// Me reports whether the request carries a live session, and for whom.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	sess, err := h.sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	user, err := h.users.GetByID(sess.UserID)
	if err != nil || user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	currentListID, err := h.lists.RecentListID(user.ID)
	if err != nil {
		h.logger.Error("recent list lookup failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn":      true,
		"username":      user.Username,
		"currentListId": currentListID,
	})
}

// GetTheme returns the user's UI theme preference.
func (h *AuthHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	user, err := h.users.GetByID(act.UserID)
	if err != nil || user == nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"theme": user.Theme})
}

type setThemeRequest struct {
	NewTheme string `json:"newTheme"`
}

// SetTheme stores the user's UI theme preference. Light and dark only.
func (h *AuthHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req setThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.NewTheme != "light" && req.NewTheme != "dark" {
		writeFail(w, http.StatusBadRequest, "Invalid theme")
		return
	}

	if err := h.users.SetTheme(act.UserID, req.NewTheme); err != nil {
		h.logger.Error("set theme failed", "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"theme": req.NewTheme})
}

// actor pulls the authenticated identity out of the request context.
func actor(r *http.Request) (auth.Actor, bool) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Actor{}, false
	}
	return ac.Actor(), true
}
