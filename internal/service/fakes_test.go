package service

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/model"
)

// Hand-written fakes: each one is a small in-memory map so a test can see
// exactly what the service did to storage.

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.Username]; ok {
		return apperror.Conflict("user", user.Username)
	}
	user.ID = "user-" + user.Username
	copied := *user
	f.users[user.Username] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	copied := *u
	return &copied, nil
}

type fakeGridRepo struct {
	mu        sync.Mutex
	grids     map[string]model.Grid
	ensured   int
	ensureErr error
}

func newFakeGridRepo() *fakeGridRepo {
	return &fakeGridRepo{grids: make(map[string]model.Grid)}
}

func (f *fakeGridRepo) EnsureGrid(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.ensured++
	if _, ok := f.grids[username]; !ok {
		f.grids[username] = model.NewGrid()
	}
	return nil
}

func (f *fakeGridRepo) GetGrid(_ context.Context, username string) (model.Grid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := model.NewGrid()
	for b, floors := range f.grids[username] {
		out[b] = floors
	}
	return out, nil
}

func (f *fakeGridRepo) ReplaceBlock(_ context.Context, username, block string, floors model.Floors) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.grids[username]; !ok {
		f.grids[username] = model.NewGrid()
	}
	f.grids[username][block] = floors
	return nil
}

type fakeExportRepo struct {
	mu       sync.Mutex
	files    map[string][]model.ExportRow
	writes   int
	writeErr error
}

func newFakeExportRepo() *fakeExportRepo {
	return &fakeExportRepo{files: make(map[string][]model.ExportRow)}
}

func (f *fakeExportRepo) Write(username string, rows []model.ExportRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.files[username] = append([]model.ExportRow(nil), rows...)
	return nil
}

func (f *fakeExportRepo) Read(username string) ([]model.ExportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows, ok := f.files[username]
	if !ok {
		return nil, apperror.NotFound("export", username)
	}
	return rows, nil
}

func (f *fakeExportRepo) Open(username string) (*os.File, fs.FileInfo, error) {
	f.mu.Lock()
	_, ok := f.files[username]
	f.mu.Unlock()
	if !ok {
		return nil, nil, apperror.NotFound("export", username)
	}
	// Download bytes aren't inspected by service tests; any real file works.
	file, err := os.CreateTemp("", "fake-export-*.xlsx")
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, info, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
