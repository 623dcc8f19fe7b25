// Package spreadsheet writes and reads the per-user progress export,
// service_data_<username>.xlsx, using excelize.
//
// FILE LAYOUT:
//
//	Sheet "Progress"
//	Row 1:      Username | Block | Floor | Completed
//	Row 2..183: one row per (block, floor), blocks A..Z, floors 0..6
//
// Writes go to a temp file in the same directory followed by os.Rename, so a
// reader sees either the previous export or the new one, never a half-written
// file.
package spreadsheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/repository"
)

const (
	// SheetName is the worksheet holding the export rows.
	SheetName = "Progress"

	// ContentType is the MIME type for .xlsx downloads.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Header is the first row of every export.
var Header = []string{"Username", "Block", "Floor", "Completed"}

var _ repository.ExportRepository = (*Store)(nil)

// Store reads and writes export files under a single directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("spreadsheet: creating export dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// FileName returns the export file name for username.
func FileName(username string) string {
	return "service_data_" + username + ".xlsx"
}

// Path returns the full path of username's export.
func (s *Store) Path(username string) string {
	return filepath.Join(s.dir, FileName(username))
}

// Write replaces username's export with rows.
func (s *Store) Write(username string, rows []model.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("spreadsheet: naming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("spreadsheet: writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("spreadsheet: row %d: %w", i+2, err)
		}
		values := []any{r.Username, r.Block, r.Floor, r.Completed}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("spreadsheet: writing row %d: %w", i+2, err)
		}
	}

	tmp, err := os.CreateTemp(s.dir, ".service_data_*.xlsx.tmp")
	if err != nil {
		return fmt.Errorf("spreadsheet: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename fails harmlessly with ENOENT.
	defer os.Remove(tmpPath)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("spreadsheet: writing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("spreadsheet: closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.Path(username)); err != nil {
		return fmt.Errorf("spreadsheet: replacing export for %q: %w", username, err)
	}
	return nil
}

// Read parses username's export back into rows. A missing file is
// apperror.ErrNotFound.
//
// Parsing is lenient in the same way the dashboard is: a row whose Floor or
// Completed cell can't be read is skipped instead of failing the report.
func (s *Store) Read(username string) ([]model.ExportRow, error) {
	f, err := excelize.OpenFile(s.Path(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.NotFound("export", username)
		}
		return nil, fmt.Errorf("spreadsheet: opening export for %q: %w", username, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: reading rows for %q: %w", username, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	out := make([]model.ExportRow, 0, len(raw)-1)
	for _, cols := range raw[1:] {
		row, ok := parseRow(cols)
		if !ok {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// Open returns the export file for streaming. The caller closes it.
func (s *Store) Open(username string) (*os.File, fs.FileInfo, error) {
	file, err := os.Open(s.Path(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperror.NotFound("export", username)
		}
		return nil, nil, fmt.Errorf("spreadsheet: opening export for %q: %w", username, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("spreadsheet: stat export for %q: %w", username, err)
	}
	return file, info, nil
}

// parseRow converts one data row. Bool cells come back from excelize as
// "TRUE"/"FALSE"; strconv.ParseBool also accepts the "1"/"0" other tools
// write.
func parseRow(cols []string) (model.ExportRow, bool) {
	if len(cols) < len(Header) {
		return model.ExportRow{}, false
	}

	floor, err := strconv.Atoi(cols[2])
	if err != nil {
		return model.ExportRow{}, false
	}
	completed, err := strconv.ParseBool(cols[3])
	if err != nil {
		return model.ExportRow{}, false
	}

	return model.ExportRow{
		Username:  cols[0],
		Block:     cols[1],
		Floor:     floor,
		Completed: completed,
	}, true
}
