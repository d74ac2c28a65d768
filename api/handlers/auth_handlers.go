package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"kendala-hub/config"
	"kendala-hub/core/auth"
	"kendala-hub/core/store"
	"kendala-hub/core/utils"
)

const (
	sessionCookie = "kendala_session"
	csrfCookie    = "kendala_csrf"
)

type AuthHandler struct {
	cfg      *config.AppConfig
	users    store.UsersStore
	sessions *auth.SessionManager
	audits   store.AuditStore
	logger   *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, users store.UsersStore, sessions *auth.SessionManager, audits store.AuditStore, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, sessions: sessions, audits: audits, logger: logger}
}

type loginResponse struct {
	User      userView `json:"user"`
	CSRFToken string   `json:"csrf_token"`
}

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByUsername(r.Context(), creds.Username)
	if err != nil || user == nil || !user.Active ||
		!auth.CheckPassword(user.PasswordHash, creds.Password, h.cfg.Pepper) {
		if h.logger != nil {
			h.logger.Printf("LOGIN fail username=%s ip=%s", creds.Username, remoteIP(r))
		}
		_ = h.audits.Append(r.Context(), creds.Username, "login_failed", remoteIP(r))
		http.Error(w, "username atau password salah", http.StatusUnauthorized)
		return
	}

	rec, err := h.sessions.Create(r.Context(), user, remoteIP(r), r.UserAgent())
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("create session for %s: %v", user.Username, err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    rec.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  rec.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    rec.CSRFToken,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Expires:  rec.ExpiresAt,
	})

	_ = h.audits.Append(r.Context(), user.Username, "login", remoteIP(r))
	if h.logger != nil {
		h.logger.Printf("LOGIN ok username=%s role=%s", user.Username, user.Role)
	}
	writeJSON(w, http.StatusOK, loginResponse{
		User:      userView{ID: user.ID, Username: user.Username, Role: user.Role},
		CSRFToken: rec.CSRFToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	if err := h.sessions.Delete(r.Context(), sess.ID); err != nil && h.logger != nil {
		h.logger.Errorf("delete session %s: %v", sess.ID, err)
	}
	expire := time.Unix(0, 0)
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", HttpOnly: true, Expires: expire})
	http.SetCookie(w, &http.Cookie{Name: csrfCookie, Value: "", Path: "/", Expires: expire})
	_ = h.audits.Append(r.Context(), sess.Username, "logout", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, userView{ID: sess.UserID, Username: sess.Username, Role: sess.Role})
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
