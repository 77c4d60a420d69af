package model

import (
	"fmt"
	"strings"
	"time"
)

// ExecutionOutcome is the result the execution engine reports for one trigger attempt.
type ExecutionOutcome string

const (
	// ExecutionSuccess means the pipeline was triggered.
	ExecutionSuccess ExecutionOutcome = "success"
	// ExecutionFailed means triggering the pipeline failed.
	ExecutionFailed ExecutionOutcome = "failed"
)

// JobStatus maps the outcome onto the job lifecycle.
func (o ExecutionOutcome) JobStatus() JobStatus {
	if o == ExecutionSuccess {
		return JobStatusCompleted
	}
	return JobStatusFailed
}

// MaxResponseTextLength bounds the stored engine response.
const MaxResponseTextLength = 64 * 1024

// JobExecution records one report from the execution engine.
type JobExecution struct {
	ID           string           `json:"id"            yaml:"id"            db:"id"`
	JobID        string           `json:"job_id"        yaml:"job_id"        db:"job_id"`
	ExecutedAt   time.Time        `json:"executed_at"   yaml:"executed_at"   db:"executed_at"`
	Outcome      ExecutionOutcome `json:"outcome"       yaml:"outcome"       db:"outcome"`
	ResponseText string           `json:"response_text" yaml:"response_text" db:"response_text"`
}

// ExecutionReport is the body the engine posts to the complete and fail endpoints.
type ExecutionReport struct {
	ResponseText string `json:"response_text"`
}

// Validate trims the report and enforces the size bound.
func (r *ExecutionReport) Validate() error {
	r.ResponseText = strings.TrimSpace(r.ResponseText)
	if len(r.ResponseText) > MaxResponseTextLength {
		return fmt.Errorf("response_text cannot exceed %d bytes", MaxResponseTextLength)
	}
	return nil
}

// RecordOutcomeParams identifies the job an execution report belongs to.
type RecordOutcomeParams struct {
	JobID        string
	Outcome      ExecutionOutcome
	ResponseText string
}

// PruneExecutionsParams bounds one pass of execution history cleanup.
type PruneExecutionsParams struct {
	Before    time.Time
	BatchSize int
}
