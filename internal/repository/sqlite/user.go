package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/repository"
)

// Compile-time check: *DB must satisfy UserRepository.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts user inside a transaction that first checks for an
// existing username, so a duplicate is reported as a Conflict and never
// touches the stored password.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", user.Username)
	}

	id := xid.New().String()
	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id,
		user.Username,
		user.PasswordHash,
		now,
	)
	if err != nil {
		// The UNIQUE constraint is the backstop if two writers slip past the
		// COUNT check.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user %q: %w", user.Username, err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

// GetUserByUsername looks a user up by exact (case-sensitive) username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}
