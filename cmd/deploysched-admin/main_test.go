package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploysched/deploysched/config"
	"github.com/deploysched/deploysched/internal/client"
	"github.com/deploysched/deploysched/internal/domain/model"
)

var fixedNow = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory scheduling service.
type fakeAPI struct {
	mu       sync.Mutex
	jobs     []model.Job
	execs    map[string][]model.JobExecution
	created  []model.JobRequest
	updated  map[string]model.JobRequest
	deleted  []string
	listErr  error
	defaults *model.FormDefaultsView
}

func newFakeAPI(jobs ...model.Job) *fakeAPI {
	return &fakeAPI{
		jobs:    jobs,
		execs:   map[string][]model.JobExecution{},
		updated: map[string]model.JobRequest{},
	}
}

func (f *fakeAPI) List(context.Context) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Job(nil), f.jobs...), nil
}

func (f *fakeAPI) find(id string) int {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeAPI) Get(_ context.Context, id string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, &client.ServiceError{Code: client.CodeNotFound, Message: "scheduled job not found"}
	}
	j := f.jobs[i]
	return &j, nil
}

func jobFrom(id string, req model.JobRequest) model.Job {
	return model.Job{
		ID:           id,
		AppName:      req.AppName,
		VersionMode:  req.VersionMode,
		Version:      req.Version,
		TargetServer: req.TargetServer,
		AppBranch:    req.AppBranch,
		SkipClone:    req.SkipClone,
		SkipBuild:    req.SkipBuild,
		ScheduleDate: req.ScheduleDate,
		ScheduleTime: req.ScheduleTime,
		ScheduledAt:  req.ScheduledAt,
		JenkinsURL:   req.JenkinsURL,
		JenkinsUser:  req.JenkinsUser,
		Status:       model.JobStatusPending,
	}
}

func (f *fakeAPI) Create(_ context.Context, req model.JobRequest) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	j := jobFrom("new-job", req)
	f.jobs = append([]model.Job{j}, f.jobs...)
	return &j, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, req model.JobRequest) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, &client.ServiceError{Code: client.CodeNotFound}
	}
	if f.jobs[i].Status.Terminal() {
		return nil, &client.ServiceError{Code: client.CodeNotEditable, Message: "only pending jobs can be edited"}
	}
	f.updated[id] = req
	f.jobs[i] = jobFrom(id, req)
	j := f.jobs[i]
	return &j, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return &client.ServiceError{Code: client.CodeNotFound}
	}
	f.deleted = append(f.deleted, id)
	f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
	return nil
}

func (f *fakeAPI) Executions(_ context.Context, id string) ([]model.JobExecution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.execs[id], nil
}

func (f *fakeAPI) VersionModes(context.Context) ([]model.VersionModeInfo, error) {
	return model.DescribeVersionModes(), nil
}

func (f *fakeAPI) FormDefaults(context.Context) (*model.FormDefaultsView, error) {
	if f.defaults == nil {
		return nil, &client.ServiceError{Code: client.CodeTransport, Message: "connection refused"}
	}
	return f.defaults, nil
}

type harness struct {
	api    *fakeAPI
	out    *bytes.Buffer
	errOut *bytes.Buffer
	cmdCtx *commandContext
	cfg    config.AppConfig
}

func newHarness(api *fakeAPI, stdin string) *harness {
	h := &harness{api: api, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.cfg = config.AppConfig{}
	h.cfg.Schedule.Timezone = "UTC"
	h.cfg.Schedule.DefaultBranch = "main"
	h.cfg.Schedule.DefaultJenkinsURL = "https://jenkins.example.com"
	h.cmdCtx = &commandContext{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Out:    h.out,
		Err:    h.errOut,
		In:     strings.NewReader(stdin),
		Now:    func() time.Time { return fixedNow },
		NewClient: func(config.ClientConfig) (apiClient, error) {
			return api, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), args, h.cmdCtx, func() (config.AppConfig, error) { return h.cfg, nil })
}

func pendingJob(id, app string) model.Job {
	return model.Job{
		ID:           id,
		AppName:      app,
		VersionMode:  model.VersionModeManual,
		Version:      "1.4.2",
		TargetServer: "prod-1",
		AppBranch:    "main",
		SkipClone:    true,
		ScheduleDate: "2030-06-02",
		ScheduleTime: "03:30",
		JenkinsURL:   "https://jenkins.example.com",
		JenkinsUser:  "deployer",
		Status:       model.JobStatusPending,
	}
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	h := newHarness(newFakeAPI(), "")
	assert.Equal(t, 2, h.run())
	assert.Contains(t, h.errOut.String(), "Available commands:")

	h = newHarness(newFakeAPI(), "")
	assert.Equal(t, 2, h.run("bogus"))
	assert.Contains(t, h.errOut.String(), `unknown command "bogus"`)
}

func TestRun_ConfigErrorExitsOne(t *testing.T) {
	t.Parallel()

	h := newHarness(newFakeAPI(), "")
	code := run(context.Background(), []string{"jobs-list"}, h.cmdCtx, func() (config.AppConfig, error) {
		return config.AppConfig{}, errors.New("bad env")
	})
	assert.Equal(t, 1, code)
}

func TestJobsList_Table(t *testing.T) {
	t.Parallel()

	done := pendingJob("job-2", "billing")
	done.Status = model.JobStatusCompleted
	h := newHarness(newFakeAPI(pendingJob("job-1", "checkout"), done), "")

	require.Equal(t, 0, h.run("jobs-list"))
	out := h.out.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "manual 1.4.2")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Completed")
}

func TestJobsList_Filters(t *testing.T) {
	t.Parallel()

	done := pendingJob("job-2", "billing")
	done.Status = model.JobStatusCompleted
	h := newHarness(newFakeAPI(pendingJob("job-1", "checkout"), done), "")

	require.Equal(t, 0, h.run("jobs-list", "-status", "COMPLETED", "-output", "json"))
	var views []map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "job-2", views[0]["id"])
	assert.NotContains(t, views[0], "jenkins_token")

	h = newHarness(newFakeAPI(pendingJob("job-1", "checkout"), done), "")
	require.Equal(t, 0, h.run("jobs-list", "-app", "checkout", "-output", "yaml"))
	var yviews []map[string]any
	require.NoError(t, yaml.Unmarshal(h.out.Bytes(), &yviews))
	require.Len(t, yviews, 1)
	assert.Equal(t, "checkout", yviews[0]["app_name"])
}

func TestJobsList_InvalidStatus(t *testing.T) {
	t.Parallel()

	h := newHarness(newFakeAPI(), "")
	assert.Equal(t, 1, h.run("jobs-list", "-status", "running"))
}

func TestJobsList_Query(t *testing.T) {
	t.Parallel()

	h := newHarness(newFakeAPI(pendingJob("job-1", "checkout"), pendingJob("job-2", "billing")), "")
	require.Equal(t, 0, h.run("jobs-list", "-query", "[].app_name"))

	var names []string
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &names))
	assert.Equal(t, []string{"checkout", "billing"}, names)
}

func TestJobsList_BadQueryFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.listErr = errors.New("must not be called")
	h := newHarness(api, "")
	assert.Equal(t, 1, h.run("jobs-list", "-query", "[.bad"))
}

func TestJobsList_UnrecognizedStatusWarns(t *testing.T) {
	t.Parallel()

	odd := pendingJob("job-9", "checkout")
	odd.Status = "paused"
	h := newHarness(newFakeAPI(odd), "")

	require.Equal(t, 0, h.run("jobs-list"))
	assert.Contains(t, h.errOut.String(), `job job-9 has unrecognized status "paused"`)
	assert.Contains(t, h.out.String(), "Pending")
}

func TestJobsShow(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(pendingJob("job-1", "checkout"))
	api.execs["job-1"] = []model.JobExecution{{
		ID: "exec-1", JobID: "job-1", ExecutedAt: fixedNow,
		Outcome: model.ExecutionSuccess, ResponseText: "queued #12\nmore",
	}}
	h := newHarness(api, "")

	require.Equal(t, 0, h.run("jobs-show", "job-1"))
	out := h.out.String()
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "queued #12")
	assert.NotContains(t, out, "more")

	h = newHarness(api, "")
	assert.Equal(t, 1, h.run("jobs-show", "missing"))

	h = newHarness(api, "")
	assert.Equal(t, 1, h.run("jobs-show"))
}

func TestJobsCreate_FromFlags(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	h := newHarness(api, "")

	code := h.run("jobs-create",
		"-app", "checkout", "-version", "2.0.0", "-server", "prod-1",
		"-date", "2030-06-02", "-time", "04:00",
		"-jenkins-user", "deployer", "-jenkins-token", "s3cret")
	require.Equal(t, 0, code, h.errOut.String())

	require.Len(t, api.created, 1)
	req := api.created[0]
	assert.Equal(t, "checkout", req.AppName)
	assert.Equal(t, model.VersionModeManual, req.VersionMode)
	assert.Equal(t, "main", req.AppBranch)
	assert.Equal(t, "https://jenkins.example.com", req.JenkinsURL)
	assert.True(t, req.SkipClone)
	assert.False(t, req.SkipBuild)
	assert.Contains(t, h.out.String(), "new-job")
}

func TestJobsCreate_FromFileWithOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "req.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_name: billing
version_mode: latest
target_server: prod-2
schedule_date: "2030-06-03"
schedule_time: "01:15"
jenkins_user: deployer
jenkins_token: s3cret
skip_build: true
`), 0o600))

	api := newFakeAPI()
	h := newHarness(api, "")
	require.Equal(t, 0, h.run("jobs-create", "-f", path, "-server", "prod-3", "-skip-clone=false"), h.errOut.String())

	require.Len(t, api.created, 1)
	req := api.created[0]
	assert.Equal(t, "billing", req.AppName)
	assert.Equal(t, model.VersionModeLatest, req.VersionMode)
	assert.Equal(t, "prod-3", req.TargetServer)
	assert.False(t, req.SkipClone)
	assert.True(t, req.SkipBuild)
}

func TestJobsCreate_ServiceDefaultsWin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.defaults = &model.FormDefaultsView{Request: model.RawJobRequest{
		AppBranch:   "release",
		JenkinsURL:  "https://ci.example.com",
		VersionMode: model.VersionModeLatest,
	}}
	h := newHarness(api, "")

	require.Equal(t, 0, h.run("jobs-create",
		"-app", "checkout", "-server", "prod-1", "-date", "2030-06-02", "-time", "04:00",
		"-jenkins-user", "deployer", "-jenkins-token", "s3cret"), h.errOut.String())

	req := api.created[0]
	assert.Equal(t, "release", req.AppBranch)
	assert.Equal(t, "https://ci.example.com", req.JenkinsURL)
	assert.Equal(t, model.VersionModeLatest, req.VersionMode)
}

func TestJobsCreate_ValidationFailsLocally(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing app", args: []string{"-version", "1.0", "-server", "p", "-date", "2030-06-02", "-time", "04:00", "-jenkins-user", "u", "-jenkins-token", "t"}},
		{name: "past schedule", args: []string{"-app", "a", "-version", "1.0", "-server", "p", "-date", "2030-05-31", "-time", "04:00", "-jenkins-user", "u", "-jenkins-token", "t"}},
		{name: "manual without version", args: []string{"-app", "a", "-server", "p", "-date", "2030-06-02", "-time", "04:00", "-jenkins-user", "u", "-jenkins-token", "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI()
			h := newHarness(api, "")
			assert.Equal(t, 1, h.run(append([]string{"jobs-create"}, tt.args...)...))
			assert.Empty(t, api.created)
		})
	}
}

func TestJobsEdit_RequiresToken(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(pendingJob("job-1", "checkout"))
	h := newHarness(api, "")

	assert.Equal(t, 1, h.run("jobs-edit", "job-1", "-version", "1.5.0"))
	assert.Empty(t, api.updated)
}

func TestJobsEdit_ReplacesRequest(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(pendingJob("job-1", "checkout"))
	h := newHarness(api, "")

	require.Equal(t, 0, h.run("jobs-edit", "job-1", "-version", "1.5.0", "-jenkins-token", "s3cret"), h.errOut.String())
	req, ok := api.updated["job-1"]
	require.True(t, ok)
	assert.Equal(t, "1.5.0", req.Version)
	assert.Equal(t, "checkout", req.AppName)
	assert.Equal(t, "s3cret", req.JenkinsToken)
}

func TestJobsEdit_SwitchingToLatestDropsStoredVersion(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(pendingJob("job-1", "checkout"))
	h := newHarness(api, "")

	require.Equal(t, 0, h.run("jobs-edit", "job-1", "-version-mode", "latest", "-jenkins-token", "s3cret"), h.errOut.String())
	req := api.updated["job-1"]
	assert.Equal(t, model.VersionModeLatest, req.VersionMode)
	assert.Empty(t, req.Version)
}

func TestJobsEdit_ExplicitVersionWithLatestIsRejected(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(pendingJob("job-1", "checkout"))
	h := newHarness(api, "")

	assert.Equal(t, 1, h.run("jobs-edit", "job-1", "-version-mode", "latest", "-version", "2.0.0", "-jenkins-token", "s3cret"))
	assert.Empty(t, api.updated)
}

func TestJobsEdit_SwitchingToHashKeepsStoredVersion(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(pendingJob("job-1", "checkout"))
	h := newHarness(api, "")

	require.Equal(t, 0, h.run("jobs-edit", "job-1", "-version-mode", "hash", "-jenkins-token", "s3cret"), h.errOut.String())
	assert.Equal(t, "1.4.2", api.updated["job-1"].Version)
}

func TestJobsEdit_ServiceRejectsTerminalJob(t *testing.T) {
	t.Parallel()

	failed := pendingJob("job-1", "checkout")
	failed.Status = model.JobStatusFailed
	api := newFakeAPI(failed)
	h := newHarness(api, "")

	assert.Equal(t, 1, h.run("jobs-edit", "job-1", "-jenkins-token", "s3cret"))
	assert.Empty(t, api.updated)
	assert.Equal(t, model.JobStatusFailed, api.jobs[0].Status)
}

func TestJobsDelete(t *testing.T) {
	t.Parallel()

	t.Run("yes flag", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI(pendingJob("job-1", "checkout"))
		h := newHarness(api, "")
		require.Equal(t, 0, h.run("jobs-delete", "job-1", "-yes"))
		assert.Equal(t, []string{"job-1"}, api.deleted)
		assert.Contains(t, h.out.String(), "deleted job-1")
	})

	t.Run("confirmed at prompt", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI(pendingJob("job-1", "checkout"))
		h := newHarness(api, "y\n")
		require.Equal(t, 0, h.run("jobs-delete", "job-1"))
		assert.Equal(t, []string{"job-1"}, api.deleted)
	})

	t.Run("declined at prompt", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI(pendingJob("job-1", "checkout"))
		h := newHarness(api, "n\n")
		assert.Equal(t, 1, h.run("jobs-delete", "job-1"))
		assert.Empty(t, api.deleted)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		h := newHarness(api, "")
		assert.Equal(t, 1, h.run("jobs-delete", "nope", "-yes"))
	})
}

func TestVersionModes(t *testing.T) {
	t.Parallel()

	h := newHarness(newFakeAPI(), "")
	require.Equal(t, 0, h.run("version-modes"))
	out := h.out.String()
	for _, m := range model.AllVersionModes() {
		assert.Contains(t, out, string(m))
	}

	h = newHarness(newFakeAPI(), "")
	require.Equal(t, 0, h.run("version-modes", "-output", "json"))
	var modes []model.VersionModeInfo
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &modes))
	assert.Len(t, modes, len(model.AllVersionModes()))
}

func TestParseMigrateFlags(t *testing.T) {
	t.Parallel()

	h := newHarness(newFakeAPI(), "")
	opts, err := parseMigrateFlags(h.cmdCtx, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseMigrateFlags(h.cmdCtx, []string{"-timeout", "0s"})
	require.Error(t, err)
}
