package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/auth"
	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/service"
)

// DashboardHandler shows and updates the logged-in user's grid.
// Both routes sit behind auth.RequireSession.
type DashboardHandler struct {
	progress *service.ProgressService
	pages    *Pages
	logger   *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(progress *service.ProgressService, pages *Pages, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		progress: progress,
		pages:    pages,
		logger:   logger,
	}
}

// HandleDashboard renders the grid.
//
// HTTP: GET /dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	grid, err := h.progress.Grid(r.Context(), s.Username)
	if err != nil {
		serverError(w, h.logger, "loading grid failed", err)
		return
	}
	h.render(w, r, http.StatusOK, grid, nil)
}

// HandleSave applies one block's checkboxes and re-exports the grid.
//
// HTTP: POST /dashboard   (form: block, floors[] repeated)
//
// An empty block only regenerates the export. An unknown block gets a 400
// with the dashboard and an error message; the stored grid is untouched.
func (h *DashboardHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	block := r.PostFormValue("block")
	floors := r.PostForm["floors"]

	grid, err := h.progress.Save(r.Context(), s.Username, block, floors)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			current, gerr := h.progress.Grid(r.Context(), s.Username)
			if gerr != nil {
				serverError(w, h.logger, "loading grid failed", gerr)
				return
			}
			h.render(w, r, statusFor(err), current, map[string]any{"Error": userMessage(err)})
			return
		}
		serverError(w, h.logger, "saving grid failed", err)
		return
	}

	notice := "Saved. Your spreadsheet has been updated."
	if block != "" {
		notice = "Block " + block + " saved. Your spreadsheet has been updated."
	}
	h.render(w, r, http.StatusOK, grid, map[string]any{"Notice": notice})
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, grid model.Grid, extra map[string]any) {
	floorIdx := make([]int, model.FloorsPerBlock)
	for i := range floorIdx {
		floorIdx[i] = i
	}

	data := map[string]any{
		"Title":  "Dashboard",
		"Rows":   grid.Rows(),
		"Floors": floorIdx,
	}
	for k, v := range extra {
		data[k] = v
	}
	h.pages.Render(w, r, status, PageDashboard, data)
}
