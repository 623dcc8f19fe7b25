package auth

import (
	"context"
	"net/http"
)

// contextKey is unexported so only this package can read or write the
// session stored in a request context.
type contextKey string

const sessionKey contextKey = "session"

// RequireSession gates the authenticated routes. A request without a valid
// session cookie is redirected to the login page; no error is shown, the
// same way an expired browser session simply lands the user back on "/".
func RequireSession(sessions *SessionManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.FromRequest(r)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// WithSession returns a copy of ctx carrying s. Handlers normally get the
// session from RequireSession; tests use this to skip the cookie.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session set by RequireSession.
// ok is false for anonymous requests.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok && s.LoggedIn && s.Username != ""
}
