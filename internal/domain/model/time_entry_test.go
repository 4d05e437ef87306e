package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationBetween(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	hours, err := DurationBetween(start, start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, hours, 0.001)

	// Rounds to two decimal places.
	hours, err = DurationBetween(start, start.Add(100*time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 1.67, hours, 0.001)

	_, err = DurationBetween(start, start.Add(-time.Minute))
	assert.Error(t, err)
}

func TestTimeEntry_Open(t *testing.T) {
	assert.True(t, TimeEntry{}.Open())
	end := time.Now()
	assert.False(t, TimeEntry{EndTime: &end}.Open())
}

func TestClockInRequest_Validate(t *testing.T) {
	assert.Error(t, (&ClockInRequest{}).Validate())
	assert.NoError(t, (&ClockInRequest{JobID: "j1"}).Validate())
}

func TestWeekBounds(t *testing.T) {
	// Wednesday 2025-03-12 → week of Sunday 2025-03-09 .. Saturday 2025-03-15.
	start, end := WeekBounds(time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), end)

	// A Sunday is its own week start.
	start, _ = WeekBounds(time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
}

func TestCategorizeFilename(t *testing.T) {
	assert.Equal(t, FileCategorySWMS, CategorizeFilename("Site-SWMS-v2.pdf"))
	assert.Equal(t, FileCategoryPrestart, CategorizeFilename("prestart-checklist.docx"))
	assert.Equal(t, FileCategoryPrestart, CategorizeFilename("Cleaning Roster.xlsx"))
	assert.Equal(t, FileCategorySafety, CategorizeFilename("safety manual.pdf"))
	assert.Equal(t, FileCategoryOther, CategorizeFilename("invoice.pdf"))
}
