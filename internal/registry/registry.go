// Package registry keeps the operator's view of scheduled jobs in sync with the scheduling service.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/deploysched/deploysched/internal/client"
	"github.com/deploysched/deploysched/internal/domain/model"
)

const refreshKey = "refresh"

// Snapshot is an immutable listing as returned by the service, in service order.
type Snapshot struct {
	// Version increases by one with every successful refresh. Zero means never loaded.
	Version   uint64
	Jobs      []model.Job
	FetchedAt time.Time
	Warnings  []model.ConsistencyWarning
}

// Entry pairs a job with its status projection.
type Entry struct {
	Job    model.Job
	Status model.StatusView
}

// Entries projects every job of the snapshot.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.Jobs))
	for i := range s.Jobs {
		out[i] = Entry{Job: s.Jobs[i], Status: model.ProjectStatus(s.Jobs[i].Status)}
	}
	return out
}

// Find returns the job with id.
func (s Snapshot) Find(id string) (model.Job, bool) {
	for i := range s.Jobs {
		if s.Jobs[i].ID == id {
			return s.Jobs[i], true
		}
	}
	return model.Job{}, false
}

// Options configures a JobRegistry.
type Options struct {
	Client client.SchedulingServiceClient // Required
	Logger *slog.Logger                   // Optional
	Now    func() time.Time               // Optional
}

// JobRegistry holds the latest snapshot. Mutations go through the client and, once accepted,
// are followed by a refresh; a rejected mutation leaves the snapshot untouched.
type JobRegistry struct {
	client client.SchedulingServiceClient
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	// listSeq numbers listings in the order they were requested; installedSeq is the
	// number of the listing the snapshot holds. Older listings never replace newer ones.
	listSeq      uint64
	installedSeq uint64

	refreshes singleflight.Group
}

// New builds an empty registry.
func New(opts Options) (*JobRegistry, error) {
	if opts.Client == nil {
		return nil, errors.New("SchedulingServiceClient is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JobRegistry{
		client:   opts.Client,
		logger:   logger.With("component", "job_registry"),
		now:      now,
		snapshot: Snapshot{Jobs: []model.Job{}},
	}, nil
}

// Snapshot returns a copy of the current snapshot.
func (r *JobRegistry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.clone()
}

func (s Snapshot) clone() Snapshot {
	s.Jobs = slices.Clone(s.Jobs)
	s.Warnings = slices.Clone(s.Warnings)
	return s
}

// Refresh replaces the snapshot with a fresh listing. Concurrent calls share one request.
// On failure the previous snapshot is kept.
func (r *JobRegistry) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, _ := r.refreshes.Do(refreshKey, func() (any, error) {
		return r.fetch(ctx)
	})
	if err != nil {
		r.logger.WarnContext(ctx, "job registry refresh failed", "error", err)
		return r.Snapshot(), fmt.Errorf("refresh jobs: %w", err)
	}
	snap, _ := v.(Snapshot)
	return snap.clone(), nil
}

// refreshAfterMutation lists on its own instead of joining a shared refresh, whose listing may
// predate the mutation. Later Refresh callers start a new flight as well.
func (r *JobRegistry) refreshAfterMutation(ctx context.Context) error {
	r.refreshes.Forget(refreshKey)
	if _, err := r.fetch(ctx); err != nil {
		r.logger.WarnContext(ctx, "job registry refresh failed", "error", err)
		return fmt.Errorf("refresh jobs: %w", err)
	}
	return nil
}

func (r *JobRegistry) fetch(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	r.listSeq++
	seq := r.listSeq
	r.mu.Unlock()

	jobs, err := r.client.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return r.install(ctx, seq, jobs), nil
}

func (r *JobRegistry) install(ctx context.Context, seq uint64, jobs []model.Job) Snapshot {
	if jobs == nil {
		jobs = []model.Job{}
	}
	warnings := model.CheckStatuses(jobs)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq < r.installedSeq {
		r.logger.DebugContext(ctx, "dropping superseded job listing", "seq", seq, "installed", r.installedSeq)
		return r.snapshot
	}
	for _, w := range warnings {
		r.logger.WarnContext(ctx, "job has unrecognized status", "job_id", w.JobID, "status", w.Status)
	}
	r.installedSeq = seq
	r.snapshot = Snapshot{
		Version:   r.snapshot.Version + 1,
		Jobs:      jobs,
		FetchedAt: r.now(),
		Warnings:  warnings,
	}
	return r.snapshot
}

// Create submits a new request. The returned job is the service's answer; when the follow-up
// refresh fails the job is still returned together with the refresh error.
func (r *JobRegistry) Create(ctx context.Context, req model.JobRequest) (*model.Job, error) {
	job, err := r.client.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	r.logger.InfoContext(ctx, "job scheduled", "id", job.ID, "app_name", job.AppName)
	if err := r.refreshAfterMutation(ctx); err != nil {
		return job, err
	}
	return job, nil
}

// Update replaces the request of a pending job. Non-pending jobs surface client.CodeNotEditable.
func (r *JobRegistry) Update(ctx context.Context, id string, req model.JobRequest) (*model.Job, error) {
	job, err := r.client.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update job %s: %w", id, err)
	}
	r.logger.InfoContext(ctx, "job updated", "id", job.ID)
	if err := r.refreshAfterMutation(ctx); err != nil {
		return job, err
	}
	return job, nil
}

// Remove permanently deletes a job. Callers confirm with the operator before calling.
func (r *JobRegistry) Remove(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	r.logger.InfoContext(ctx, "job deleted", "id", id)
	return r.refreshAfterMutation(ctx)
}
