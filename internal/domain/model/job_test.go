package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobRequest_Validate(t *testing.T) {
	t.Run("defaults status and priority", func(t *testing.T) {
		req := CreateJobRequest{JobNumber: "JOB-001", Title: "Office deep clean"}
		require.NoError(t, req.Validate())
		assert.Equal(t, JobStatusPending, req.Status)
		assert.Equal(t, JobPriorityMedium, req.Priority)
	})

	t.Run("rejects empty job number", func(t *testing.T) {
		req := CreateJobRequest{Title: "x"}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects due before start", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		due := start.AddDate(0, 0, -1)
		req := CreateJobRequest{JobNumber: "JOB-002", Title: "x", StartDate: &start, DueDate: &due}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects negative hours", func(t *testing.T) {
		h := -1.0
		req := CreateJobRequest{JobNumber: "JOB-003", Title: "x", EstimatedHours: &h}
		assert.Error(t, req.Validate())
	})

	t.Run("normalizes priority case", func(t *testing.T) {
		req := CreateJobRequest{JobNumber: "JOB-004", Title: "x", Priority: " Urgent "}
		require.NoError(t, req.Validate())
		assert.Equal(t, JobPriorityUrgent, req.Priority)
	})
}

func TestUpdateJobRequest_Validate(t *testing.T) {
	empty := " "
	req := UpdateJobRequest{Title: &empty}
	assert.Error(t, req.Validate())

	bad := JobStatus("done")
	req = UpdateJobRequest{Status: &bad}
	assert.Error(t, req.Validate())

	assert.False(t, (&UpdateJobRequest{}).HasUpdates())
	title := "Repaint lobby"
	assert.True(t, (&UpdateJobRequest{Title: &title}).HasUpdates())
}

func TestParseJobStatus(t *testing.T) {
	s, ok := ParseJobStatus(" In_Progress ")
	require.True(t, ok)
	assert.Equal(t, JobStatusInProgress, s)

	_, ok = ParseJobStatus("finished")
	assert.False(t, ok)
}

func TestJob_Deletable(t *testing.T) {
	assert.True(t, Job{Status: JobStatusPending}.Deletable())
	assert.True(t, Job{Status: JobStatusCompleted}.Deletable())
	assert.False(t, Job{Status: JobStatusInProgress}.Deletable())
	assert.False(t, Job{Status: JobStatusOnHold}.Deletable())
}
