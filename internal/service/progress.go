package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/repository"
)

// ProgressService reads and updates a user's grid and keeps the
// spreadsheet export in step with it.
type ProgressService struct {
	grids   repository.GridRepository
	exports repository.ExportRepository
	logger  *slog.Logger
}

// NewProgressService wires a ProgressService.
func NewProgressService(grids repository.GridRepository, exports repository.ExportRepository, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		grids:   grids,
		exports: exports,
		logger:  logger,
	}
}

// Grid returns username's grid, creating an empty one on first access.
func (s *ProgressService) Grid(ctx context.Context, username string) (model.Grid, error) {
	if err := s.grids.EnsureGrid(ctx, username); err != nil {
		return nil, fmt.Errorf("service/progress: ensuring grid for %q: %w", username, err)
	}
	grid, err := s.grids.GetGrid(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/progress: loading grid for %q: %w", username, err)
	}
	return grid, nil
}

// Save applies one dashboard submission and re-exports the grid.
//
// When block is non-empty its row is replaced: every floor is reset, then
// each entry of floors that parses as an index in [0,7) is set. Anything
// else in floors is dropped without an error. An empty block changes
// nothing but still re-exports, so the user can regenerate the file.
//
// A block outside A..Z is apperror.ErrValidation; nothing is written.
func (s *ProgressService) Save(ctx context.Context, username, block string, floors []string) (model.Grid, error) {
	if block != "" && !model.ValidBlock(block) {
		return nil, apperror.ValidationFailed("block", fmt.Sprintf("Unknown block %q", block))
	}

	if err := s.grids.EnsureGrid(ctx, username); err != nil {
		return nil, fmt.Errorf("service/progress: ensuring grid for %q: %w", username, err)
	}

	if block != "" {
		parsed, dropped := ParseFloors(floors)
		if len(dropped) > 0 {
			s.logger.Debug("ignored floor indices",
				slog.String("username", username),
				slog.String("block", block),
				slog.Any("values", dropped),
			)
		}
		if err := s.grids.ReplaceBlock(ctx, username, block, parsed); err != nil {
			return nil, fmt.Errorf("service/progress: saving block %s for %q: %w", block, username, err)
		}
	}

	grid, err := s.grids.GetGrid(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/progress: loading grid for %q: %w", username, err)
	}

	rows := grid.ExportRows(username)
	if err := s.exports.Write(username, rows); err != nil {
		return nil, fmt.Errorf("service/progress: exporting grid for %q: %w", username, err)
	}
	s.logger.Debug("export written",
		slog.String("username", username),
		slog.Int("rows", len(rows)),
	)

	s.logger.Info("grid saved",
		slog.String("username", username),
		slog.String("block", block),
	)
	return grid, nil
}

// ParseFloors turns submitted floor values into a block row. Values that
// are not integers in [0,7) come back in dropped. Duplicates are harmless.
func ParseFloors(values []string) (floors model.Floors, dropped []string) {
	for _, v := range values {
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 0 || idx >= model.FloorsPerBlock {
			dropped = append(dropped, v)
			continue
		}
		floors[idx] = true
	}
	return floors, dropped
}
