package testutil

import (
	"time"

	"github.com/deploysched/deploysched/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building raw scheduling requests in tests.
type JobRequestBuilder struct {
	raw model.RawJobRequest
}

// NewJobRequest returns a builder for a manual-mode request scheduled one day after now.
func NewJobRequest(now time.Time) *JobRequestBuilder {
	at := now.Add(24 * time.Hour)
	return &JobRequestBuilder{
		raw: model.RawJobRequest{
			AppName:      "svc-a",
			VersionMode:  model.VersionModeManual,
			Version:      "15.13.0.0-0",
			TargetServer: "PROD-01",
			AppBranch:    "main",
			SkipClone:    BoolPtr(true),
			SkipBuild:    BoolPtr(false),
			ScheduleDate: at.Format(model.ScheduleDateLayout),
			ScheduleTime: at.Format(model.ScheduleTimeLayout),
			JenkinsURL:   "http://jenkins.example.com:5001",
			JenkinsUser:  "deployer",
			JenkinsToken: "token",
		},
	}
}

// WithAppName sets the application name.
func (b *JobRequestBuilder) WithAppName(name string) *JobRequestBuilder {
	b.raw.AppName = name
	return b
}

// WithVersion sets the version mode and literal version.
func (b *JobRequestBuilder) WithVersion(mode model.VersionMode, version string) *JobRequestBuilder {
	b.raw.VersionMode = mode
	b.raw.Version = version
	return b
}

// WithTargetServer sets the target server.
func (b *JobRequestBuilder) WithTargetServer(server string) *JobRequestBuilder {
	b.raw.TargetServer = server
	return b
}

// WithSchedule sets the schedule from t, formatted in t's location.
func (b *JobRequestBuilder) WithSchedule(t time.Time) *JobRequestBuilder {
	b.raw.ScheduleDate = t.Format(model.ScheduleDateLayout)
	b.raw.ScheduleTime = t.Format(model.ScheduleTimeLayout)
	return b
}

// WithJenkinsURL sets the Jenkins URL.
func (b *JobRequestBuilder) WithJenkinsURL(u string) *JobRequestBuilder {
	b.raw.JenkinsURL = u
	return b
}

// Raw returns the built raw request.
func (b *JobRequestBuilder) Raw() model.RawJobRequest {
	return b.raw
}

// Build validates the request against now in loc and panics on failure; builders only produce valid requests.
func (b *JobRequestBuilder) Build(now time.Time, loc *time.Location) model.JobRequest {
	req, err := model.ValidateJobRequest(b.raw, model.ValidateOptions{Now: now, Location: loc})
	if err != nil {
		panic("testutil: invalid job request: " + err.Error())
	}
	return req
}
