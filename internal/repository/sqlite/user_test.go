package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/model"
)

func createTestUser(t *testing.T, db *DB, username, hash string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: hash}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{Username: "alice", PasswordHash: "$2a$04$hash"}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if u.ID == "" {
		t.Error("CreateUser() did not set ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set CreatedAt")
	}
}

func TestCreateUser_DuplicateKeepsOriginal(t *testing.T) {
	db := newTestDB(t)
	original := createTestUser(t, db, "alice", "first-hash")

	err := db.CreateUser(context.Background(), &model.User{Username: "alice", PasswordHash: "second-hash"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() duplicate error = %v, want ErrConflict", err)
	}

	found, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.PasswordHash != "first-hash" {
		t.Errorf("PasswordHash = %q, want the first account's hash", found.PasswordHash)
	}
	if found.ID != original.ID {
		t.Errorf("ID = %q, want %q", found.ID, original.ID)
	}
}

func TestCreateUser_UsernamesAreCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice", "h1")

	// "Alice" is a different user.
	if err := db.CreateUser(context.Background(), &model.User{Username: "Alice", PasswordHash: "h2"}); err != nil {
		t.Fatalf("CreateUser(Alice) error = %v", err)
	}

	if _, err := db.GetUserByUsername(context.Background(), "ALICE"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername(ALICE) error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob", "bob-hash")

	found, err := db.GetUserByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.ID != created.ID || found.Username != "bob" || found.PasswordHash != "bob-hash" {
		t.Errorf("GetUserByUsername() = %+v", found)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername() error = %v, want ErrNotFound", err)
	}
}

func TestUsers_PersistInFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floors.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	createTestUser(t, db, "carol", "carol-hash")
	db.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetUserByUsername(context.Background(), "carol"); err != nil {
		t.Errorf("user should survive reopen of a file database: %v", err)
	}
}
