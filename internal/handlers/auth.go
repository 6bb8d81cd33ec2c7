package handlers

import (
	"log/slog"
	"net/http"

	"eventpress/internal/session"
	"eventpress/internal/store"
)

// Auth groups the authentication HTTP handlers: password login and logout.
// The login flow resolves the user's role once; afterwards the session
// gate only cares whether that role is "admin".
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and opens an admin session.
// Responses: 400 malformed body, 401 bad credentials, 403 user without a
// role, 500 on downstream failure.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "e-posta ya da şifre hatalı")
		return
	}

	if user.Role == "" {
		writeError(w, http.StatusForbidden, "bu hesaba rol atanmadı")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	slog.Info("login successful", "email", user.Email, "role", user.Role)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "role": user.Role})
}

// Logout destroys the session and clears the cookie. Always succeeds,
// even without a session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
