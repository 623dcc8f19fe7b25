// Package auth provides password hashing and the signed session cookie.
//
// SESSION FLOW:
//  1. POST / with valid credentials → SessionManager.Issue sets the "session"
//     cookie: an HS256 JWT carrying {logged_in: true, username: "..."}
//  2. Every protected request passes through RequireSession, which validates
//     the cookie and puts the Session in the request context
//  3. GET /logout → SessionManager.Clear expires the cookie
//
// The cookie is the whole session: there is no server-side session table,
// so "logout" means the browser drops the cookie. The token carries no
// expiry claim and the cookie has no Max-Age, which makes it last for the
// browser session, matching the anonymous → authenticated → anonymous
// state machine with no intermediate states.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName is the cookie that carries the signed session.
	SessionCookieName = "session"

	issuer = "floor-tracker"
)

// Session is what a valid cookie proves about the caller.
type Session struct {
	LoggedIn bool
	Username string
}

// sessionClaims is the JWT payload.
type sessionClaims struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager signs, validates and clears session cookies.
type SessionManager struct {
	secret []byte
	secure bool
}

// NewSessionManager returns a SessionManager that signs with secret.
// secure sets the cookie's Secure attribute (HTTPS deployments).
func NewSessionManager(secret string, secure bool) (*SessionManager, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionManager{secret: []byte(secret), secure: secure}, nil
}

// Sign returns the signed token for username.
func (m *SessionManager) Sign(username string) (string, error) {
	if username == "" {
		return "", errors.New("auth: username must not be empty")
	}

	c := sessionClaims{
		LoggedIn: true,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}
	return signed, nil
}

// Parse validates a signed token and returns the session it carries.
//
// The method check rejects tokens with alg "none" or an asymmetric
// algorithm; WithIssuer rejects tokens minted by other apps sharing the key.
func (m *SessionManager) Parse(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return Session{}, fmt.Errorf("auth: invalid session: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return Session{}, errors.New("auth: invalid session claims")
	}
	if !c.LoggedIn || c.Username == "" {
		return Session{}, errors.New("auth: session is not logged in")
	}

	return Session{LoggedIn: true, Username: c.Username}, nil
}

// Issue signs a session for username and sets it as a cookie on w.
func (m *SessionManager) Issue(w http.ResponseWriter, username string) error {
	signed, err := m.Sign(username)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie. It is safe to call without a session.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest reads and validates the session cookie on r.
func (m *SessionManager) FromRequest(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Session{}, err
	}
	return m.Parse(cookie.Value)
}
