package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

// ReportServiceOptions groups dependencies for ReportService.
type ReportServiceOptions struct {
	Entries core.TimeEntryRepository
}

// ReportService aggregates approved time entries into weekly reports and
// renders the XLSX timesheet export.
type ReportService struct {
	entries core.TimeEntryRepository
}

// NewReportService constructs a new ReportService.
func NewReportService(opts ReportServiceOptions) (*ReportService, error) {
	if opts.Entries == nil {
		return nil, errors.New("time entry repository is required")
	}
	return &ReportService{entries: opts.Entries}, nil
}

// Weekly builds the user's report for the Sunday-to-Saturday week containing
// ref. Only approved entries count; submitted and open entries are excluded
// until an admin signs them off.
func (s *ReportService) Weekly(ctx context.Context, userID string, ref time.Time) (*model.WeeklyReport, error) {
	if userID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	start, end := model.WeekBounds(ref)

	entries, err := s.entries.WeeklyEntries(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	report := &model.WeeklyReport{
		UserID:    userID,
		WeekStart: start,
		WeekEnd:   end,
		Entries:   entries,
	}

	jobs := make(map[string]struct{})
	days := make(map[string]struct{})
	for _, e := range entries {
		report.TotalHours += e.Hours
		jobs[e.JobNumber] = struct{}{}
		days[e.Date.Format("2006-01-02")] = struct{}{}
	}
	report.JobCount = len(jobs)
	// Average over days actually worked, not the full week, so a two-day
	// week reads as two full days rather than a fraction.
	if len(days) > 0 {
		report.AverageDaily = report.TotalHours / float64(len(days))
	}

	return report, nil
}

const timesheetSheet = "Timesheet"

// ExportXLSX renders the weekly report as an XLSX timesheet and streams it
// to w.
func (s *ReportService) ExportXLSX(ctx context.Context, userID string, ref time.Time, w io.Writer) error {
	report, err := s.Weekly(ctx, userID, ref)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), timesheetSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetColWidth(timesheetSheet, "A", "C", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(timesheetSheet, "C", "C", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	setCell := func(cell string, value any) error {
		return f.SetCellValue(timesheetSheet, cell, value)
	}

	header := []struct {
		cell  string
		value any
	}{
		{"A1", "Week"},
		{"B1", report.WeekStart.Format("2006-01-02") + " to " + report.WeekEnd.Format("2006-01-02")},
		{"A3", "Date"},
		{"B3", "Job Number"},
		{"C3", "Job"},
		{"D3", "Hours"},
	}
	for _, h := range header {
		if err := setCell(h.cell, h.value); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := 4
	for _, e := range report.Entries {
		cells := []struct {
			col   string
			value any
		}{
			{"A", e.Date.Format("2006-01-02")},
			{"B", e.JobNumber},
			{"C", e.JobTitle},
			{"D", e.Hours},
		}
		for _, c := range cells {
			if err := setCell(fmt.Sprintf("%s%d", c.col, row), c.value); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
		row++
	}

	row++
	if err := setCell(fmt.Sprintf("C%d", row), "Total"); err != nil {
		return fmt.Errorf("write total label: %w", err)
	}
	if err := setCell(fmt.Sprintf("D%d", row), report.TotalHours); err != nil {
		return fmt.Errorf("write total: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
