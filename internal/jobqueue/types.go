package jobqueue

import (
	"encoding/json"
	"time"
)

type JobType string

const (
	JobTypeApplyPayment JobType = "apply_payment"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job is the envelope stored in Redis. Payload stays opaque here; the
// registered handler decodes it.
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	ErrorMsg    string          `json:"error_msg,omitempty"`
	RetryCount  int             `json:"retry_count"`
	MaxRetries  int             `json:"max_retries"`
}

// Retryable reports whether a failed job has attempts left.
func (j *Job) Retryable() bool {
	return j.RetryCount < j.MaxRetries
}

func (j *Job) markProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

func (j *Job) markCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

func (j *Job) markFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

func (j *Job) markRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
