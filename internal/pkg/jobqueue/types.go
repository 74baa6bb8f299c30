package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	// JobTypeSessionReconcile force-closes sessions open past the sanity
	// bound, settling them with the standard close formulas.
	JobTypeSessionReconcile JobType = "session_reconcile"
	// JobTypeSessionWarning emits warnings for subscription sessions that
	// are about to exhaust their remaining hours.
	JobTypeSessionWarning JobType = "session_warning"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// SessionReconcileJobPayload configures a reconciliation sweep.
type SessionReconcileJobPayload struct {
	MaxAgeHours int `json:"max_age_hours"`
}

// ToMap converts the payload to a map for storage
func (p SessionReconcileJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"max_age_hours": p.MaxAgeHours,
	}
}

// SessionReconcileJobPayloadFromMap creates a payload from a map
func SessionReconcileJobPayloadFromMap(data map[string]interface{}) (*SessionReconcileJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload SessionReconcileJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// SessionWarningJobPayload configures a low-hours warning pass.
type SessionWarningJobPayload struct {
	WindowMinutes int `json:"window_minutes"`
}

// ToMap converts the payload to a map for storage
func (p SessionWarningJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"window_minutes": p.WindowMinutes,
	}
}

// SessionWarningJobPayloadFromMap creates a payload from a map
func SessionWarningJobPayloadFromMap(data map[string]interface{}) (*SessionWarningJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload SessionWarningJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
