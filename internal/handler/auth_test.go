package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/floor-tracker/internal/auth"
)

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_LoginPage(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.auth.HandleLoginPage(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `action="/"`)
	assert.Contains(t, rr.Body.String(), `name="password"`)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success redirects to login", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, postForm("/register", url.Values{
			"username": {"alice"},
			"password": {"pw"},
		}))

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		assert.Nil(t, sessionCookie(t, rr), "registering does not log in")
	})

	t.Run("duplicate re-renders with message", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice", "first")

		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, postForm("/register", url.Values{
			"username": {"alice"},
			"password": {"second"},
		}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Username already exists")
		assert.Contains(t, rr.Body.String(), `value="alice"`)
	})

	t.Run("unsafe username re-renders with message", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, postForm("/register", url.Values{
			"username": {"../evil"},
			"password": {"pw"},
		}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "must not contain")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets session and redirects", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice", "pw")

		rr := httptest.NewRecorder()
		env.auth.HandleLogin(rr, postForm("/", url.Values{
			"username": {"alice"},
			"password": {"pw"},
		}))

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

		c := sessionCookie(t, rr)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)

		s, err := env.sessions.Parse(c.Value)
		require.NoError(t, err)
		assert.Equal(t, "alice", s.Username)
		assert.True(t, s.LoggedIn)
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "pw"},
		{"empty form", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.register(t, "alice", "pw")

			rr := httptest.NewRecorder()
			env.auth.HandleLogin(rr, postForm("/", url.Values{
				"username": {tt.username},
				"password": {tt.password},
			}))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "Invalid credentials")
			assert.Nil(t, sessionCookie(t, rr))
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)

	// With and without a session the result is the same.
	for _, withCookie := range []bool{true, false} {
		req := httptest.NewRequest(http.MethodGet, "/logout", nil)
		if withCookie {
			token, err := env.sessions.Sign("alice")
			require.NoError(t, err)
			req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		}

		rr := httptest.NewRecorder()
		env.auth.HandleLogout(rr, req)

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		c := sessionCookie(t, rr)
		require.NotNil(t, c)
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
}
