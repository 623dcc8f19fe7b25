package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/repository"
)

var _ repository.GridRepository = (*DB)(nil)

// EnsureGrid inserts the 182 floor rows for username, skipping any that
// already exist. Running it on every login is therefore harmless.
func (db *DB) EnsureGrid(ctx context.Context, username string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO floors (username, block, floor, completed) VALUES (?, ?, ?, 0)`)
	if err != nil {
		return fmt.Errorf("sqlite: preparing grid insert: %w", err)
	}
	defer stmt.Close()

	for _, block := range model.Blocks() {
		for floor := 0; floor < model.FloorsPerBlock; floor++ {
			if _, err := stmt.ExecContext(ctx, username, block, floor); err != nil {
				return fmt.Errorf("sqlite: inserting %s/%d for %q: %w", block, floor, username, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing grid for %q: %w", username, err)
	}
	return nil
}

// GetGrid reads every floor row for username into a full grid.
func (db *DB) GetGrid(ctx context.Context, username string) (model.Grid, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT block, floor, completed FROM floors WHERE username = ?`, username)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying grid for %q: %w", username, err)
	}
	defer rows.Close()

	grid := model.NewGrid()
	for rows.Next() {
		var (
			block     string
			floor     int
			completed bool
		)
		if err := rows.Scan(&block, &floor, &completed); err != nil {
			return nil, fmt.Errorf("sqlite: scanning grid row: %w", err)
		}
		// The table's CHECK constraints keep these in range; skip anything
		// else rather than grow the grid past 26×7.
		if !model.ValidBlock(block) || floor < 0 || floor >= model.FloorsPerBlock {
			continue
		}
		f := grid[block]
		f[floor] = completed
		grid[block] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating grid rows: %w", err)
	}

	return grid, nil
}

// ReplaceBlock writes all seven floors of block in one transaction, so a
// concurrent GetGrid never sees half a block.
func (db *DB) ReplaceBlock(ctx context.Context, username, block string, floors model.Floors) error {
	if !model.ValidBlock(block) {
		return fmt.Errorf("sqlite: invalid block %q", block)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO floors (username, block, floor, completed) VALUES (?, ?, ?, ?)
		 ON CONFLICT (username, block, floor) DO UPDATE SET completed = excluded.completed`)
	if err != nil {
		return fmt.Errorf("sqlite: preparing block upsert: %w", err)
	}
	defer stmt.Close()

	for floor, done := range floors {
		if _, err := stmt.ExecContext(ctx, username, block, floor, done); err != nil {
			return fmt.Errorf("sqlite: writing %s/%d for %q: %w", block, floor, username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing block %s for %q: %w", block, username, err)
	}
	return nil
}
