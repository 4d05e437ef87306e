package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
)

func newReportService(t *testing.T) (*mocks.MockTimeEntryRepository, *ReportService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockTimeEntryRepository(ctrl)
	svc, err := NewReportService(ReportServiceOptions{Entries: repo})
	require.NoError(t, err)
	return repo, svc
}

func weekEntries() []model.ReportEntry {
	mon := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)
	return []model.ReportEntry{
		{Date: mon, Hours: 4, JobNumber: "J-1001", JobTitle: "Fitout level 3"},
		{Date: mon, Hours: 3.5, JobNumber: "J-1002", JobTitle: "Warehouse clean"},
		{Date: tue, Hours: 8, JobNumber: "J-1001", JobTitle: "Fitout level 3"},
	}
}

func TestReportService_Weekly(t *testing.T) {
	t.Parallel()
	repo, svc := newReportService(t)
	ctx := context.Background()

	// Monday 2025-03-17 falls in the week of Sunday the 16th.
	ref := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	weekStart := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	weekEnd := time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().
		WeeklyEntries(ctx, "u1", weekStart, weekEnd).
		Return(weekEntries(), nil)

	report, err := svc.Weekly(ctx, "u1", ref)
	require.NoError(t, err)
	assert.Equal(t, weekStart, report.WeekStart)
	assert.Equal(t, weekEnd, report.WeekEnd)
	assert.InDelta(t, 15.5, report.TotalHours, 0.001)
	assert.Equal(t, 2, report.JobCount)
	// Two distinct days worked.
	assert.InDelta(t, 7.75, report.AverageDaily, 0.001)
	assert.Len(t, report.Entries, 3)
}

func TestReportService_Weekly_Empty(t *testing.T) {
	t.Parallel()
	repo, svc := newReportService(t)
	ctx := context.Background()

	repo.EXPECT().
		WeeklyEntries(ctx, "u1", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	report, err := svc.Weekly(ctx, "u1", time.Now())
	require.NoError(t, err)
	assert.Zero(t, report.TotalHours)
	assert.Zero(t, report.JobCount)
	assert.Zero(t, report.AverageDaily)
}

func TestReportService_Weekly_RequiresUser(t *testing.T) {
	t.Parallel()
	_, svc := newReportService(t)

	_, err := svc.Weekly(context.Background(), "", time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportService_ExportXLSX(t *testing.T) {
	t.Parallel()
	repo, svc := newReportService(t)
	ctx := context.Background()

	repo.EXPECT().
		WeeklyEntries(ctx, "u1", gomock.Any(), gomock.Any()).
		Return(weekEntries(), nil)

	var buf bytes.Buffer
	ref := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.ExportXLSX(ctx, "u1", ref, &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Timesheet", f.GetSheetName(0))

	rows, err := f.GetRows("Timesheet")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 6)

	// Header row, then one row per entry, then the total.
	assert.Equal(t, []string{"Date", "Job Number", "Job", "Hours"}, rows[2])
	assert.Equal(t, "2025-03-17", rows[3][0])
	assert.Equal(t, "J-1001", rows[3][1])

	total, err := f.GetCellValue("Timesheet", "D8")
	require.NoError(t, err)
	assert.Equal(t, "15.5", total)
}
