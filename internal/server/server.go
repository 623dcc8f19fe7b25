// Package server is the composition root: it builds every dependency from
// config.Config, wires the routes and runs the HTTP server.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config
//	  ├─ sqlite.New(DBPath)            → UserRepository, GridRepository
//	  ├─ spreadsheet.NewStore(ExportDir) → ExportRepository
//	  ├─ auth.NewSessionManager(SessionSecret)
//	  └─ handler.NewPages(TemplateDir)
//	services: AuthService, ProgressService, ReportService
//	handlers: AuthHandler, DashboardHandler, ReportHandler
//
// Each layer gets only what it needs: services see repository interfaces,
// handlers see services. Nothing below this package knows how the rest is
// constructed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/floor-tracker/internal/auth"
	"github.com/sakif/floor-tracker/internal/config"
	"github.com/sakif/floor-tracker/internal/handler"
	"github.com/sakif/floor-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/floor-tracker/internal/repository/sqlite"
	"github.com/sakif/floor-tracker/internal/service"
	"github.com/sakif/floor-tracker/internal/spreadsheet"
)

// Server owns the router and the database connection.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the whole dependency graph from cfg.
//
// The database is owned by the Server: Start closes it on shutdown, and
// callers that never Start (tests) call Close.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET  /healthz    liveness probe (JSON)
//	GET  /static/*   CSS
//	GET  /           login form
//	POST /           log in
//	GET  /register   registration form
//	POST /register   create account
//	GET  /logout     clear session (no session required)
//	GET  /dashboard  grid              [session]
//	POST /dashboard  save block+export [session]
//	GET  /report     per-block summary [session]
//	GET  /download   raw spreadsheet   [session]
//
// MIDDLEWARE ORDER:
//  1. RequestID, RealIP: request metadata the logger reads
//  2. Logger: one line per request
//  3. Recoverer: a panic becomes a 500 (and is still logged by Logger)
//  4. CSRF: only on the page routes, not on /healthz or /static
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Repositories ===
	exports, err := spreadsheet.NewStore(s.config.ExportDir)
	if err != nil {
		return fmt.Errorf("creating export store: %w", err)
	}

	// === Services ===
	passwords := auth.NewPasswordService()
	accounts := service.NewAuthService(s.db, s.db, passwords, s.logger)
	progress := service.NewProgressService(s.db, exports, s.logger)
	reports := service.NewReportService(exports)

	// === Handlers ===
	sessions, err := auth.NewSessionManager(s.config.SessionSecret, s.config.SecureCookies)
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}
	pages, err := handler.NewPages(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	authHandler := handler.NewAuthHandler(accounts, sessions, pages, s.logger)
	dashboardHandler := handler.NewDashboardHandler(progress, pages, s.logger)
	reportHandler := handler.NewReportHandler(reports, pages, s.logger)

	// === Unprotected infrastructure ===
	s.router.Get("/healthz", handler.HandleHealth)
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Pages ===
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(middleware.CSRFConfig{
			Key:      s.config.CSRFKey,
			Secure:   s.config.SecureCookies,
			Disabled: s.config.CSRFDisabled,
		}, s.logger))

		r.Get("/", authHandler.HandleLoginPage)
		r.Post("/", authHandler.HandleLogin)
		r.Get("/register", authHandler.HandleRegisterPage)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(sessions, "/"))

			r.Get("/dashboard", dashboardHandler.HandleDashboard)
			r.Post("/dashboard", dashboardHandler.HandleSave)
			r.Get("/report", reportHandler.HandleReport)
			r.Get("/download", reportHandler.HandleDownload)
		})
	})

	return nil
}

// Handler returns the root handler, for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
//  1. stop accepting connections
//  2. give in-flight requests 30 seconds
//  3. close the database
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("exportDir", s.config.ExportDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
