package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/email"
	"github.com/codedbycupidity/alignr/internal/store"
)

const sessionCookieName = "alignr_session"

type AuthHandler struct {
	userStore      *store.UserStore
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	emailClient    *email.Client
	logger         *slog.Logger
}

func NewAuthHandler(
	us *store.UserStore,
	ss *store.SessionStore,
	mls *store.MagicLinkStore,
	ec *email.Client,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userStore:      us,
		sessionStore:   ss,
		magicLinkStore: mls,
		emailClient:    ec,
		logger:         logger,
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login emails a one-time sign-in code. The response is the same whether or
// not an account exists, to prevent user enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(addr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	code, err := h.magicLinkStore.Create(addr)
	if err != nil {
		h.logger.Error("create login code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send code")
		return
	}

	if !h.emailClient.Configured() {
		// Local development fallback: surface the code in the log.
		h.logger.Info("email not configured, login code follows", "email", addr, "code", code)
	} else if err := h.emailClient.SendLoginCode(addr, code); err != nil {
		h.logger.Error("send login code", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "code_sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}

// Verify checks the emailed code and opens a session, creating the account
// on first sign-in.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	addr := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)
	if addr == "" || code == "" {
		writeError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	ok, err := h.magicLinkStore.Verify(addr, code)
	if err != nil {
		h.logger.Error("verify login code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify code")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	user, err := h.userStore.GetByEmail(addr)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if user == nil {
		user, err = h.userStore.Create(addr, strings.TrimSpace(req.Name))
		if err != nil {
			h.logger.Error("create user", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to sign in")
			return
		}
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, user)
}

// Logout deletes the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the signed-in organizer.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uc, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	user, err := h.userStore.GetByID(uc.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
