// Package handler contains the HTTP handlers for the floor tracker.
//
// WHAT IS A HANDLER?
// An http.HandlerFunc with the usual (w, r) signature. Chi's router accepts
// these directly.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (form fields, session from context)
//  2. Call the service layer
//  3. Write the response: a rendered page, a redirect, a file or plain text
//
// Handlers hold no business rules. Anything a service returns as an
// apperror is turned into a status code or a form message here.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gorilla/csrf"

	"github.com/sakif/floor-tracker/internal/auth"
)

// Page names. Each one is a file in the template directory that defines
// {{define "content"}} for base.html.
const (
	PageLogin     = "login"
	PageRegister  = "register"
	PageDashboard = "dashboard"
	PageReport    = "report"
)

var allPages = []string{PageLogin, PageRegister, PageDashboard, PageReport}

// Pages renders the HTML pages. Every page is parsed together with
// base.html once at startup; rendering only executes.
type Pages struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewPages parses base.html plus one file per page from templateDir.
//
// TEMPLATE COMPOSITION:
// base.html defines the layout with a {{template "content" .}} hole; each page
// file fills the hole. Pages are parsed into separate template sets because
// every one of them defines "content".
func NewPages(templateDir string, logger *slog.Logger) (*Pages, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}

	p := &Pages{
		templates: make(map[string]*template.Template, len(allPages)),
		logger:    logger,
	}
	for _, name := range allPages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s page: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// Render executes page into a buffer and only then writes status and body,
// so a template error becomes a clean 500 instead of half a page.
//
// Every page gets these keys on top of data:
//   - CSRFField: the hidden gorilla/csrf input (empty when CSRF is off)
//   - Username:  the logged-in user, if any
//
// Error, Notice and UsernameVal default to "" so templates can test them
// without tripping over missing keys.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	tmpl, ok := p.templates[page]
	if !ok {
		p.logger.Error("unknown page", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]any)
	}
	for _, key := range []string{"Error", "Notice", "UsernameVal", "Username"} {
		if _, set := data[key]; !set {
			data[key] = ""
		}
	}
	data["CSRFField"] = csrf.TemplateField(r)
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		data["Username"] = s.Username
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		p.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.logger.Debug("client went away mid-response", slog.String("error", err.Error()))
	}
}
