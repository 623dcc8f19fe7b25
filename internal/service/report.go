package service

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/repository"
)

// ReportService builds the progress report from the exported spreadsheet,
// not from the database: the report shows exactly what was last exported.
type ReportService struct {
	exports repository.ExportRepository
}

// NewReportService wires a ReportService.
func NewReportService(exports repository.ExportRepository) *ReportService {
	return &ReportService{exports: exports}
}

// Report reads username's export and summarizes it. It returns
// apperror.ErrNotFound when nothing has been exported yet.
func (s *ReportService) Report(username string) ([]model.BlockSummary, error) {
	rows, err := s.exports.Read(username)
	if err != nil {
		return nil, fmt.Errorf("service/report: %w", err)
	}
	return Summarize(rows), nil
}

// Export opens username's raw export for download. The caller closes the
// file. It returns apperror.ErrNotFound when there is no export.
func (s *ReportService) Export(username string) (*os.File, fs.FileInfo, error) {
	f, info, err := s.exports.Open(username)
	if err != nil {
		return nil, nil, fmt.Errorf("service/report: %w", err)
	}
	return f, info, nil
}

// Summarize groups rows by block and counts completed floors. Percent is
// 100*completed/7 truncated toward zero, so 2 floors is 28%, not 29%.
// The result is sorted by block name.
func Summarize(rows []model.ExportRow) []model.BlockSummary {
	counts := make(map[string]int)
	for _, r := range rows {
		if _, seen := counts[r.Block]; !seen {
			counts[r.Block] = 0
		}
		if r.Completed {
			counts[r.Block]++
		}
	}

	blocks := make([]string, 0, len(counts))
	for b := range counts {
		blocks = append(blocks, b)
	}
	sort.Strings(blocks)

	summary := make([]model.BlockSummary, 0, len(blocks))
	for _, b := range blocks {
		n := counts[b]
		summary = append(summary, model.BlockSummary{
			Block:           b,
			CompletedFloors: n,
			Percent:         n * 100 / model.FloorsPerBlock,
		})
	}
	return summary
}
