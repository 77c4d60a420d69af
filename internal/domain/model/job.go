package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a scheduled job.
// Values decoded from the service are kept as sent; CheckStatuses reports unknown ones.
type JobStatus string

const (
	// JobStatusPending indicates the job waits for its scheduled time or for the engine's report.
	JobStatusPending JobStatus = "pending"
	// JobStatusCompleted indicates the engine reported a successful pipeline trigger.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the engine reported a failed pipeline trigger.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is one of the three lifecycle states.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusCompleted || s == JobStatusFailed
}

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ParseJobStatus reads a status filter from a flag or query string.
func ParseJobStatus(v string) (JobStatus, error) {
	s := JobStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid job status: %q", v)
	}
	return s, nil
}

var (
	// ErrJobNotFound is returned when no job has the requested id.
	ErrJobNotFound = errors.New("scheduled job not found")
	// ErrJobNotEditable is returned when a completed or failed job is edited.
	ErrJobNotEditable = errors.New("only pending jobs can be edited")
	// ErrJobAlreadyFinished is returned when the engine reports on a job that already has an outcome.
	ErrJobAlreadyFinished = errors.New("job already has an outcome")
)

// Job is a persisted JobRequest plus its server-managed fields.
// The Jenkins token is stored but never serialized.
type Job struct {
	ID           string      `json:"id"            yaml:"id"            db:"id"`
	AppName      string      `json:"app_name"      yaml:"app_name"      db:"app_name"`
	VersionMode  VersionMode `json:"version_mode"  yaml:"version_mode"  db:"version_mode"`
	Version      string      `json:"version"       yaml:"version"       db:"version"`
	TargetServer string      `json:"target_server" yaml:"target_server" db:"target_server"`
	AppBranch    string      `json:"app_branch"    yaml:"app_branch"    db:"app_branch"`
	SkipClone    bool        `json:"skip_clone"    yaml:"skip_clone"    db:"skip_clone"`
	SkipBuild    bool        `json:"skip_build"    yaml:"skip_build"    db:"skip_build"`
	ScheduleDate string      `json:"schedule_date" yaml:"schedule_date" db:"schedule_date"`
	ScheduleTime string      `json:"schedule_time" yaml:"schedule_time" db:"schedule_time"`
	ScheduledAt  time.Time   `json:"scheduled_at"  yaml:"scheduled_at"  db:"scheduled_at"`
	JenkinsURL   string      `json:"jenkins_url"   yaml:"jenkins_url"   db:"jenkins_url"`
	JenkinsUser  string      `json:"jenkins_user"  yaml:"jenkins_user"  db:"jenkins_user"`
	JenkinsToken string      `json:"-"             yaml:"-"             db:"jenkins_token"`
	Status       JobStatus   `json:"status"        yaml:"status"        db:"status"`
	CreatedAt    time.Time   `json:"created_at"    yaml:"created_at"    db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"    yaml:"updated_at"    db:"updated_at"`
}

// Request returns the scheduling request the job carries.
// JenkinsToken is empty for jobs decoded from API responses.
func (j *Job) Request() JobRequest {
	return JobRequest{
		AppName:      j.AppName,
		VersionMode:  j.VersionMode,
		Version:      j.Version,
		TargetServer: j.TargetServer,
		AppBranch:    j.AppBranch,
		SkipClone:    j.SkipClone,
		SkipBuild:    j.SkipBuild,
		ScheduleDate: j.ScheduleDate,
		ScheduleTime: j.ScheduleTime,
		JenkinsURL:   j.JenkinsURL,
		JenkinsUser:  j.JenkinsUser,
		JenkinsToken: j.JenkinsToken,
		ScheduledAt:  j.ScheduledAt,
	}
}

// JobListOptions filters and pages job listings. Results are newest first.
type JobListOptions struct {
	Limit   int
	Offset  int
	Status  *JobStatus
	AppName *string
}
