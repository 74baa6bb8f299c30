package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Session Reconcile", JobTypeSessionReconcile, "session_reconcile"},
		{"Session Warning", JobTypeSessionWarning, "session_warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name: "Failed job with retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: true,
		},
		{
			name: "Failed job with retries exhausted",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 3,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Completed job",
			job: &Job{
				Status:     JobStatusCompleted,
				RetryCount: 0,
				MaxRetries: 3,
			},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{
		ID:         "test-job",
		Type:       JobTypeSessionReconcile,
		Status:     JobStatusPending,
		MaxRetries: 3,
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("sweep failed")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "sweep failed", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestSessionReconcileJobPayload_RoundTrip(t *testing.T) {
	payload := SessionReconcileJobPayload{MaxAgeHours: 12}

	restored, err := SessionReconcileJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, 12, restored.MaxAgeHours)
}

func TestSessionWarningJobPayload_RoundTrip(t *testing.T) {
	payload := SessionWarningJobPayload{WindowMinutes: 30}

	restored, err := SessionWarningJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, 30, restored.WindowMinutes)
}
