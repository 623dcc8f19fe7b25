package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/spreadsheet"
)

func TestSummarize(t *testing.T) {
	grid := model.NewGrid()
	grid["A"] = model.Floors{true, false, true}
	grid["Z"] = model.Floors{true, true, true, true, true, true, true}

	summary := Summarize(grid.ExportRows("alice"))
	require.Len(t, summary, model.BlockCount)

	assert.Equal(t, model.BlockSummary{Block: "A", CompletedFloors: 2, Percent: 28}, summary[0])
	assert.Equal(t, model.BlockSummary{Block: "B", CompletedFloors: 0, Percent: 0}, summary[1])
	assert.Equal(t, model.BlockSummary{Block: "Z", CompletedFloors: 7, Percent: 100}, summary[25])
}

func TestSummarize_PercentTruncates(t *testing.T) {
	want := []int{0, 14, 28, 42, 57, 71, 85, 100}
	for n, pct := range want {
		var f model.Floors
		for i := 0; i < n; i++ {
			f[i] = true
		}
		g := model.Grid{"Q": f}
		summary := Summarize(g.ExportRows("u"))
		require.Len(t, summary, 1)
		assert.Equal(t, pct, summary[0].Percent, "%d floors", n)
	}
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}

func TestReport_NoExport(t *testing.T) {
	svc := NewReportService(newFakeExportRepo())

	_, err := svc.Report("alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, _, err = svc.Export("alice")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestReport_ReflectsLastSave(t *testing.T) {
	store, err := spreadsheet.NewStore(t.TempDir())
	require.NoError(t, err)
	progress := NewProgressService(newFakeGridRepo(), store, discardLogger())
	report := NewReportService(store)

	_, err = progress.Save(context.Background(), "alice", "A", []string{"0", "2"})
	require.NoError(t, err)

	summary, err := report.Report("alice")
	require.NoError(t, err)
	require.Len(t, summary, model.BlockCount)
	assert.Equal(t, 2, summary[0].CompletedFloors)
	assert.Equal(t, 28, summary[0].Percent)

	f, info, err := report.Export("alice")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, spreadsheet.FileName("alice"), info.Name())
	assert.Positive(t, info.Size())
}
