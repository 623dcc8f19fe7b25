package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/auth"
	"github.com/sakif/floor-tracker/internal/service"
)

// AuthHandler serves the login, register and logout routes.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLoginPage / HandleLogin       → GET / and POST /
//   - HandleRegisterPage / HandleRegister → GET /register and POST /register
//   - HandleLogout                        → GET /logout
//
// DEPENDENCY CHAIN:
//   - accounts *service.AuthService  → registration and credential checks
//   - sessions *auth.SessionManager  → sets and clears the session cookie
//   - pages    *Pages                → renders the forms
type AuthHandler struct {
	accounts *service.AuthService
	sessions *auth.SessionManager
	pages    *Pages
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	accounts *service.AuthService,
	sessions *auth.SessionManager,
	pages *Pages,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		pages:    pages,
		logger:   logger,
	}
}

// HandleLoginPage renders the login form.
//
// HTTP: GET /
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, PageLogin, map[string]any{
		"Title": "Login",
	})
}

// HandleLogin checks the submitted credentials.
//
// HTTP: POST /   (form: username, password)
//
// FLOW:
//  1. AuthService.Login verifies the password and makes sure a grid exists
//  2. On success the session cookie is issued and the browser goes to /dashboard
//  3. On bad credentials the form comes back (200) with "Invalid credentials"
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.accounts.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			h.pages.Render(w, r, http.StatusOK, PageLogin, map[string]any{
				"Title":       "Login",
				"Error":       userMessage(err),
				"UsernameVal": username,
			})
			return
		}
		serverError(w, h.logger, "login failed", err)
		return
	}

	if err := h.sessions.Issue(w, user.Username); err != nil {
		serverError(w, h.logger, "issuing session failed", err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleRegisterPage renders the registration form.
//
// HTTP: GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, PageRegister, map[string]any{
		"Title": "Register",
	})
}

// HandleRegister creates an account and sends the user to the login form.
//
// HTTP: POST /register   (form: username, password)
//
// A taken or unusable username re-renders the form with the reason and a
// 200; nothing about the existing account changes.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if _, err := h.accounts.Register(r.Context(), username, password); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrValidation) {
			h.pages.Render(w, r, http.StatusOK, PageRegister, map[string]any{
				"Title":       "Register",
				"Error":       userMessage(err),
				"UsernameVal": username,
			})
			return
		}
		serverError(w, h.logger, "registration failed", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout expires the session cookie and returns to the login form.
//
// HTTP: GET /logout
//
// It runs without a session check: logging out twice, or with a broken
// cookie, still ends on "/".
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s, err := h.sessions.FromRequest(r); err == nil {
		h.logger.Info("user logged out", slog.String("username", s.Username))
	}
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
