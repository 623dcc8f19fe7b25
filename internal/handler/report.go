package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/auth"
	"github.com/sakif/floor-tracker/internal/service"
	"github.com/sakif/floor-tracker/internal/spreadsheet"
)

// Plain-text bodies for a user who has not exported anything yet.
const (
	MsgNoReport     = "No report found. Please save some data first."
	MsgFileNotFound = "File not found"
)

// ReportHandler serves the progress report and the raw spreadsheet.
// Both read the last export, never the database.
type ReportHandler struct {
	reports *service.ReportService
	pages   *Pages
	logger  *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports *service.ReportService, pages *Pages, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		pages:   pages,
		logger:  logger,
	}
}

// HandleReport renders completed floors and percentage per block.
//
// HTTP: GET /report → 200 page, or 404 text/plain when nothing was exported
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	summary, err := h.reports.Report(s.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeText(w, http.StatusNotFound, MsgNoReport)
			return
		}
		serverError(w, h.logger, "building report failed", err)
		return
	}

	h.pages.Render(w, r, http.StatusOK, PageReport, map[string]any{
		"Title":   "Report",
		"Summary": summary,
	})
}

// HandleDownload streams service_data_<username>.xlsx as an attachment.
//
// HTTP: GET /download → 200 file, or 404 "File not found"
//
// http.ServeContent handles Range and If-Modified-Since from the file's
// mod time, so a re-download of an unchanged export can be a 304.
func (h *ReportHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	f, info, err := h.reports.Export(s.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeText(w, http.StatusNotFound, MsgFileNotFound)
			return
		}
		serverError(w, h.logger, "opening export failed", err)
		return
	}
	defer f.Close()

	name := spreadsheet.FileName(s.Username)
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
