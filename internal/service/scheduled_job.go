package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/deploysched/deploysched/internal/core"
	"github.com/deploysched/deploysched/internal/domain/model"
	apperrors "github.com/deploysched/deploysched/internal/errors"
	"github.com/deploysched/deploysched/internal/observability/metrics"
)

// Cache lookup results.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// ScheduledJobStores groups the storage dependencies of ScheduledJobService.
type ScheduledJobStores struct {
	Jobs       core.ScheduledJobRepository // Required
	Executions core.JobExecutionRepository // Required
	ListCache  *core.JobListCache          // Optional: list page cache
}

// ScheduledJobServiceConfig controls request validation.
type ScheduledJobServiceConfig struct {
	// Location is the zone schedule fields are read in. Defaults to time.Local.
	Location *time.Location
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// ScheduledJobServiceOptions groups dependencies for ScheduledJobService.
type ScheduledJobServiceOptions struct {
	Stores  ScheduledJobStores
	Config  ScheduledJobServiceConfig
	Logger  *slog.Logger     // Optional
	Metrics *metrics.Metrics // Optional
}

// ScheduledJobService validates scheduling requests, persists them and records engine reports.
type ScheduledJobService struct {
	jobs       core.ScheduledJobRepository
	executions core.JobExecutionRepository
	listCache  *core.JobListCache
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
	lists      singleflight.Group
}

// NewScheduledJobService constructs a new ScheduledJobService.
func NewScheduledJobService(opts ScheduledJobServiceOptions) (*ScheduledJobService, error) {
	if opts.Stores.Jobs == nil {
		return nil, errors.New("ScheduledJobRepository is required")
	}
	if opts.Stores.Executions == nil {
		return nil, errors.New("JobExecutionRepository is required")
	}

	loc := opts.Config.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Config.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "scheduled_job_service")
		logger.Debug("ScheduledJobService initialized",
			"location", loc.String(),
			"list_cache", opts.Stores.ListCache != nil,
		)
	}

	return &ScheduledJobService{
		jobs:       opts.Stores.Jobs,
		executions: opts.Stores.Executions,
		listCache:  opts.Stores.ListCache,
		loc:        loc,
		now:        now,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewScheduledJobService constructs a new ScheduledJobService and panics on error.
func MustNewScheduledJobService(opts ScheduledJobServiceOptions) *ScheduledJobService {
	svc, err := NewScheduledJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create ScheduledJobService: %v", err))
	}
	return svc
}

// Validate runs request validation with the service clock and zone.
func (s *ScheduledJobService) Validate(raw model.RawJobRequest) (model.JobRequest, error) {
	req, err := model.ValidateJobRequest(raw, model.ValidateOptions{Now: s.now(), Location: s.loc})
	if err != nil {
		return model.JobRequest{}, validationAppError(err)
	}
	return req, nil
}

// Create validates raw and stores it as a new pending job.
func (s *ScheduledJobService) Create(ctx context.Context, raw model.RawJobRequest) (*model.Job, error) {
	req, err := s.Validate(raw)
	if err != nil {
		s.metrics.JobTransition(metrics.TransitionCreate, metrics.ResultError, err)
		return nil, err
	}

	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		err = mapJobError(err, "create scheduled job")
		s.metrics.JobTransition(metrics.TransitionCreate, metrics.ResultError, err)
		return nil, err
	}

	s.invalidateLists(ctx)
	s.metrics.JobTransition(metrics.TransitionCreate, metrics.ResultSuccess, nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "scheduled job created",
			"id", job.ID,
			"app_name", job.AppName,
			"target_server", job.TargetServer,
			"scheduled_at", job.ScheduledAt,
		)
	}
	return job, nil
}

// Get returns one job.
func (s *ScheduledJobService) Get(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, mapJobError(err, "get scheduled job")
	}
	return job, nil
}

// List returns a page of jobs, newest first. Pages are served from the list cache when one is configured;
// concurrent misses for the same page share a single database read.
func (s *ScheduledJobService) List(ctx context.Context, opts model.JobListOptions) ([]model.Job, error) {
	if jobs, ok := s.cachedList(ctx, opts); ok {
		return jobs, nil
	}

	v, err, _ := s.lists.Do(listFlightKey(opts), func() (any, error) {
		jobs, err := s.jobs.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		s.storeList(ctx, opts, jobs)
		return jobs, nil
	})
	if err != nil {
		return nil, mapJobError(err, "list scheduled jobs")
	}
	jobs, _ := v.([]model.Job)
	return jobs, nil
}

// Update replaces the request of a pending job.
func (s *ScheduledJobService) Update(ctx context.Context, id string, raw model.RawJobRequest) (*model.Job, error) {
	req, err := s.Validate(raw)
	if err != nil {
		s.metrics.JobTransition(metrics.TransitionUpdate, metrics.ResultError, err)
		return nil, err
	}

	job, err := s.jobs.Update(ctx, id, req)
	if err != nil {
		err = mapJobError(err, "update scheduled job")
		s.metrics.JobTransition(metrics.TransitionUpdate, metrics.ResultError, err)
		return nil, err
	}

	s.invalidateLists(ctx)
	s.metrics.JobTransition(metrics.TransitionUpdate, metrics.ResultSuccess, nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "scheduled job updated", "id", job.ID, "scheduled_at", job.ScheduledAt)
	}
	return job, nil
}

// Delete permanently removes a job. Unknown ids yield a not_found error.
func (s *ScheduledJobService) Delete(ctx context.Context, id string) error {
	ok, err := s.jobs.Delete(ctx, id)
	if err != nil {
		err = mapJobError(err, "delete scheduled job")
		s.metrics.JobTransition(metrics.TransitionDelete, metrics.ResultError, err)
		return err
	}
	if !ok {
		err = apperrors.Wrap(model.ErrJobNotFound, apperrors.ErrCodeNotFound, "scheduled job not found")
		s.metrics.JobTransition(metrics.TransitionDelete, metrics.ResultNoop, err)
		return err
	}

	s.invalidateLists(ctx)
	s.metrics.JobTransition(metrics.TransitionDelete, metrics.ResultSuccess, nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "scheduled job deleted", "id", id)
	}
	return nil
}

// Complete records a successful pipeline trigger reported by the execution engine.
func (s *ScheduledJobService) Complete(ctx context.Context, id string, report model.ExecutionReport) (*model.Job, error) {
	return s.recordOutcome(ctx, id, model.ExecutionSuccess, report)
}

// Fail records a failed pipeline trigger reported by the execution engine.
func (s *ScheduledJobService) Fail(ctx context.Context, id string, report model.ExecutionReport) (*model.Job, error) {
	return s.recordOutcome(ctx, id, model.ExecutionFailed, report)
}

func (s *ScheduledJobService) recordOutcome(
	ctx context.Context,
	id string,
	outcome model.ExecutionOutcome,
	report model.ExecutionReport,
) (*model.Job, error) {
	transition := metrics.TransitionComplete
	if outcome == model.ExecutionFailed {
		transition = metrics.TransitionFail
	}

	if err := report.Validate(); err != nil {
		appErr := apperrors.ValidationField("response_text", err.Error())
		s.metrics.JobTransition(transition, metrics.ResultError, appErr)
		return nil, appErr
	}

	job, exec, err := s.jobs.RecordOutcome(ctx, model.RecordOutcomeParams{
		JobID:        id,
		Outcome:      outcome,
		ResponseText: report.ResponseText,
	})
	if err != nil {
		err = mapJobError(err, "record job outcome")
		s.metrics.JobTransition(transition, metrics.ResultError, err)
		return nil, err
	}

	s.invalidateLists(ctx)
	s.metrics.JobTransition(transition, metrics.ResultSuccess, nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job outcome recorded",
			"id", job.ID,
			"status", job.Status,
			"execution_id", exec.ID,
		)
	}
	return job, nil
}

// Executions lists the engine reports of one job, newest first.
func (s *ScheduledJobService) Executions(ctx context.Context, id string) ([]model.JobExecution, error) {
	if _, err := s.jobs.GetByID(ctx, id); err != nil {
		return nil, mapJobError(err, "get scheduled job")
	}
	execs, err := s.executions.ListByJob(ctx, id)
	if err != nil {
		return nil, mapJobError(err, "list job executions")
	}
	return execs, nil
}

// VersionModes describes every version mode for clients.
func (s *ScheduledJobService) VersionModes() []model.VersionModeInfo {
	return model.DescribeVersionModes()
}

func (s *ScheduledJobService) cachedList(ctx context.Context, opts model.JobListOptions) ([]model.Job, bool) {
	if s.listCache == nil {
		return nil, false
	}
	jobs, ok, err := s.listCache.Get(ctx, opts)
	switch {
	case err != nil:
		s.metrics.CacheLookup(cacheError)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "job list cache read failed, using database", "error", err)
		}
		return nil, false
	case !ok:
		s.metrics.CacheLookup(cacheMiss)
		return nil, false
	default:
		s.metrics.CacheLookup(cacheHit)
		return jobs, true
	}
}

func (s *ScheduledJobService) storeList(ctx context.Context, opts model.JobListOptions, jobs []model.Job) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.Put(ctx, opts, jobs); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "job list cache write failed", "error", err)
	}
}

func (s *ScheduledJobService) invalidateLists(ctx context.Context) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "job list cache invalidation failed", "error", err)
	}
}

func listFlightKey(opts model.JobListOptions) string {
	return core.JobListPageKey(0, opts)
}

// validationAppError turns a model.ValidationError into a validation AppError that keeps it as cause.
func validationAppError(err error) error {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeValidation,
		Message: verr.Message,
		Field:   verr.Field,
		Cause:   verr,
	}
}

// mapJobError translates repository errors into AppErrors.
func mapJobError(err error, op string) error {
	switch {
	case errors.Is(err, model.ErrJobNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "scheduled job not found")
	case errors.Is(err, model.ErrJobNotEditable):
		return apperrors.Wrap(err, apperrors.ErrCodeNotEditable, "only pending jobs can be edited")
	case errors.Is(err, model.ErrJobAlreadyFinished):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "job already has an outcome")
	}

	mapped := apperrors.MapDBError(err)
	if apperrors.GetCode(mapped) != "" {
		return mapped
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, op+" failed")
}
