package middleware

import (
	"bytes"
	"crypto/rand"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := chimiddleware.RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pot", nil))

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "bytes=15")
	assert.Contains(t, out, "path=/pot")
	assert.Regexp(t, regexp.MustCompile(`requestID=\S+`), out)
}

func TestLogger_DefaultStatusIsOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "status=200")
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

var tokenField = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

func TestCSRF_RejectsPostWithoutToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	called := false
	h := CSRF(CSRFConfig{Key: testKey(t)}, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "http://example.com/", strings.NewReader("username=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestCSRF_AcceptsTokenFromForm(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	posted := false
	h := CSRF(CSRFConfig{Key: testKey(t)}, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = true
			return
		}
		_, _ = io.WriteString(w, string(csrf.TemplateField(r)))
	}))

	// GET the form: response carries the token field and the CSRF cookie.
	getRR := httptest.NewRecorder()
	h.ServeHTTP(getRR, httptest.NewRequest(http.MethodGet, "http://example.com/", nil))
	require.Equal(t, http.StatusOK, getRR.Code)

	m := tokenField.FindStringSubmatch(getRR.Body.String())
	require.Len(t, m, 2, "form should contain the token field")

	form := url.Values{"gorilla.csrf.Token": {m[1]}}
	req := httptest.NewRequest(http.MethodPost, "http://example.com/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range getRR.Result().Cookies() {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, posted)
}

func TestCSRF_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := CSRF(CSRFConfig{Disabled: true}, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
