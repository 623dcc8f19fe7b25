// Package repository defines the storage interfaces the service layer
// depends on. Implementations live in sub-packages (repository/sqlite).
package repository

import (
	"context"
	"io/fs"
	"os"

	"github.com/sakif/floor-tracker/internal/model"
)

// UserRepository stores credentials.
type UserRepository interface {
	// CreateUser inserts a new user and sets its ID and CreatedAt.
	// A second user with the same username fails with apperror.ErrConflict
	// and leaves the existing row untouched.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByUsername returns apperror.ErrNotFound for unknown usernames.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// GridRepository stores each user's block grid.
type GridRepository interface {
	// EnsureGrid creates an all-false grid for username if none exists.
	// It never overwrites existing flags.
	EnsureGrid(ctx context.Context, username string) error

	// GetGrid returns the full grid. Missing rows read as false, so the
	// result always has every block.
	GetGrid(ctx context.Context, username string) (model.Grid, error)

	// ReplaceBlock overwrites all floors of one block atomically.
	ReplaceBlock(ctx context.Context, username, block string, floors model.Floors) error
}

// ExportRepository stores the per-user spreadsheet export
// (implemented by spreadsheet.Store).
type ExportRepository interface {
	// Write replaces the user's export with rows.
	Write(username string, rows []model.ExportRow) error

	// Read returns the rows of the user's export, or apperror.ErrNotFound
	// if nothing has been exported yet.
	Read(username string) ([]model.ExportRow, error)

	// Open returns the raw export file for download, or apperror.ErrNotFound.
	Open(username string) (*os.File, fs.FileInfo, error)
}
