package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Layouts used for the schedule fields.
const (
	ScheduleDateLayout = "2006-01-02"
	ScheduleTimeLayout = "15:04"
)

// ValidationKind classifies a JobRequest validation failure.
type ValidationKind string

const (
	// ValidationMissingField indicates a required field is empty or absent.
	ValidationMissingField ValidationKind = "missing_field"
	// ValidationInvalidVersionMode indicates version_mode is not a known mode.
	ValidationInvalidVersionMode ValidationKind = "invalid_version_mode"
	// ValidationInconsistentVersion indicates a version was supplied for a mode that forbids it.
	ValidationInconsistentVersion ValidationKind = "inconsistent_version_field"
	// ValidationInvalidURL indicates jenkins_url is not a usable URL.
	ValidationInvalidURL ValidationKind = "invalid_url"
	// ValidationInvalidSchedule indicates schedule_date or schedule_time cannot be parsed.
	ValidationInvalidSchedule ValidationKind = "invalid_schedule"
	// ValidationScheduledInPast indicates the combined schedule lies before now.
	ValidationScheduledInPast ValidationKind = "scheduled_in_past"
)

// ValidationError is returned by ValidateJobRequest. Only the first failure is reported.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches another *ValidationError by Kind, and by Field when the target names one.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// ErrMissingField matches any MissingField error; use MissingField(name) to match a specific field.
var (
	ErrMissingField             = &ValidationError{Kind: ValidationMissingField}
	ErrInvalidVersionMode       = &ValidationError{Kind: ValidationInvalidVersionMode}
	ErrInconsistentVersionField = &ValidationError{Kind: ValidationInconsistentVersion}
	ErrInvalidURL               = &ValidationError{Kind: ValidationInvalidURL}
	ErrInvalidSchedule          = &ValidationError{Kind: ValidationInvalidSchedule}
	ErrScheduledInPast          = &ValidationError{Kind: ValidationScheduledInPast}
)

// MissingField builds the MissingField error for name.
func MissingField(name string) *ValidationError {
	return &ValidationError{
		Kind:    ValidationMissingField,
		Field:   name,
		Message: name + " is required and cannot be empty",
	}
}

// RawJobRequest is the unvalidated form or API input.
// Pointer booleans distinguish an absent checkbox from an explicit false.
type RawJobRequest struct {
	AppName      string      `json:"app_name"      yaml:"app_name"`
	VersionMode  VersionMode `json:"version_mode"  yaml:"version_mode"`
	Version      string      `json:"version"       yaml:"version"`
	TargetServer string      `json:"target_server" yaml:"target_server"`
	AppBranch    string      `json:"app_branch"    yaml:"app_branch"`
	SkipClone    *bool       `json:"skip_clone"    yaml:"skip_clone"`
	SkipBuild    *bool       `json:"skip_build"    yaml:"skip_build"`
	ScheduleDate string      `json:"schedule_date" yaml:"schedule_date"`
	ScheduleTime string      `json:"schedule_time" yaml:"schedule_time"`
	JenkinsURL   string      `json:"jenkins_url"   yaml:"jenkins_url"`
	JenkinsUser  string      `json:"jenkins_user"  yaml:"jenkins_user"`
	JenkinsToken string      `json:"jenkins_token" yaml:"jenkins_token"`
}

// FormDefaults carries the values a new request form starts with.
type FormDefaults struct {
	AppBranch    string
	JenkinsURL   string
	VersionMode  VersionMode
	KnownServers []string
}

// DefaultRawJobRequest returns a request prefilled the way a new form starts:
// skip_clone checked, skip_build unchecked.
func DefaultRawJobRequest(d FormDefaults) RawJobRequest {
	skipClone, skipBuild := true, false
	mode := d.VersionMode
	if mode == "" {
		mode = VersionModeManual
	}
	return RawJobRequest{
		VersionMode: mode,
		AppBranch:   d.AppBranch,
		JenkinsURL:  d.JenkinsURL,
		SkipClone:   &skipClone,
		SkipBuild:   &skipBuild,
	}
}

// JobRequest is a validated, normalized scheduling request.
// It is handed around by value; nothing in the codebase mutates one after validation.
type JobRequest struct {
	AppName      string
	VersionMode  VersionMode
	Version      string
	TargetServer string
	AppBranch    string
	SkipClone    bool
	SkipBuild    bool
	ScheduleDate string
	ScheduleTime string
	JenkinsURL   string
	JenkinsUser  string
	JenkinsToken string
	ScheduledAt  time.Time
}

// Raw converts the request back into raw input, e.g. to resubmit it or revalidate it.
func (r JobRequest) Raw() RawJobRequest {
	skipClone, skipBuild := r.SkipClone, r.SkipBuild
	return RawJobRequest{
		AppName:      r.AppName,
		VersionMode:  r.VersionMode,
		Version:      r.Version,
		TargetServer: r.TargetServer,
		AppBranch:    r.AppBranch,
		SkipClone:    &skipClone,
		SkipBuild:    &skipBuild,
		ScheduleDate: r.ScheduleDate,
		ScheduleTime: r.ScheduleTime,
		JenkinsURL:   r.JenkinsURL,
		JenkinsUser:  r.JenkinsUser,
		JenkinsToken: r.JenkinsToken,
	}
}

// ValidateOptions supplies the clock and zone used for the schedule checks.
type ValidateOptions struct {
	Now      time.Time
	Location *time.Location
}

type requiredField struct {
	name  string
	value string
}

// ValidateJobRequest checks raw in a fixed order and returns the first failure:
// required fields, version_mode, the version policy, jenkins_url, then the schedule.
func ValidateJobRequest(raw RawJobRequest, opts ValidateOptions) (JobRequest, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	req := JobRequest{
		AppName:      strings.TrimSpace(raw.AppName),
		VersionMode:  VersionMode(strings.ToLower(strings.TrimSpace(string(raw.VersionMode)))),
		Version:      strings.TrimSpace(raw.Version),
		TargetServer: strings.TrimSpace(raw.TargetServer),
		AppBranch:    strings.TrimSpace(raw.AppBranch),
		SkipClone:    raw.SkipClone != nil && *raw.SkipClone,
		SkipBuild:    raw.SkipBuild != nil && *raw.SkipBuild,
		ScheduleDate: strings.TrimSpace(raw.ScheduleDate),
		ScheduleTime: strings.TrimSpace(raw.ScheduleTime),
		JenkinsURL:   strings.TrimSpace(raw.JenkinsURL),
		JenkinsUser:  strings.TrimSpace(raw.JenkinsUser),
		JenkinsToken: strings.TrimSpace(raw.JenkinsToken),
	}

	for _, f := range []requiredField{
		{"app_name", req.AppName},
		{"target_server", req.TargetServer},
		{"app_branch", req.AppBranch},
		{"schedule_date", req.ScheduleDate},
		{"schedule_time", req.ScheduleTime},
		{"jenkins_url", req.JenkinsURL},
		{"jenkins_user", req.JenkinsUser},
		{"jenkins_token", req.JenkinsToken},
		{"version_mode", string(req.VersionMode)},
	} {
		if f.value == "" {
			return JobRequest{}, MissingField(f.name)
		}
	}

	if !req.VersionMode.Valid() {
		return JobRequest{}, &ValidationError{
			Kind:    ValidationInvalidVersionMode,
			Field:   "version_mode",
			Message: fmt.Sprintf("version_mode must be one of: %s", joinModes(AllVersionModes())),
		}
	}

	switch RequirementFor(req.VersionMode) {
	case VersionRequired:
		if req.Version == "" {
			return JobRequest{}, MissingField("version")
		}
	case VersionForbidden:
		if req.Version != "" {
			return JobRequest{}, &ValidationError{
				Kind:  ValidationInconsistentVersion,
				Field: "version",
				Message: fmt.Sprintf("version must be empty when version_mode is %q (%s)",
					req.VersionMode, HintFor(req.VersionMode)),
			}
		}
	}

	if err := validateJenkinsURL(req.JenkinsURL); err != nil {
		return JobRequest{}, err
	}

	scheduledAt, err := composeSchedule(req.ScheduleDate, req.ScheduleTime, loc)
	if err != nil {
		return JobRequest{}, err
	}
	// Schedules have minute precision: the current minute is accepted even though its start can
	// lie up to 59s before now. Only earlier minutes are in the past.
	if scheduledAt.Before(opts.Now.In(loc).Truncate(time.Minute)) {
		return JobRequest{}, &ValidationError{
			Kind:    ValidationScheduledInPast,
			Field:   "schedule_date",
			Message: fmt.Sprintf("scheduled time %s is in the past", scheduledAt.Format("2006-01-02 15:04 MST")),
		}
	}
	req.ScheduledAt = scheduledAt
	// Re-render so equivalent inputs (e.g. "9:05") normalize identically.
	req.ScheduleDate = scheduledAt.Format(ScheduleDateLayout)
	req.ScheduleTime = scheduledAt.Format(ScheduleTimeLayout)

	return req, nil
}

func validateJenkinsURL(raw string) error {
	invalid := func(msg string) error {
		return &ValidationError{Kind: ValidationInvalidURL, Field: "jenkins_url", Message: "jenkins_url " + msg}
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return invalid("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("must use http or https scheme")
	}
	if u.Hostname() == "" {
		return invalid("must have a valid host")
	}
	return nil
}

func composeSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(ScheduleDateLayout, date, loc)
	if err != nil {
		return time.Time{}, &ValidationError{
			Kind:    ValidationInvalidSchedule,
			Field:   "schedule_date",
			Message: "schedule_date must use the YYYY-MM-DD format",
		}
	}
	c, err := parseClock(clock)
	if err != nil {
		return time.Time{}, &ValidationError{
			Kind:    ValidationInvalidSchedule,
			Field:   "schedule_time",
			Message: "schedule_time must use the HH:MM format",
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}

func parseClock(s string) (time.Time, error) {
	// Accept "9:05" as well as "09:05"; seconds are tolerated and dropped.
	for _, layout := range []string{ScheduleTimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func joinModes(modes []VersionMode) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}

// FormDefaultsView is what a client needs to start a new request.
type FormDefaultsView struct {
	Request      RawJobRequest `json:"request"       yaml:"request"`
	KnownServers []string      `json:"known_servers" yaml:"known_servers"`
	Timezone     string        `json:"timezone"      yaml:"timezone"`
}
