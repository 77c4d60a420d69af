// Package httpx provides the HTTP API of the deployment scheduler.
package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/service"
)

const (
	defaultListLimit = 50
	defaultMaxLimit  = 500
)

// JobHandlers provides HTTP handlers for scheduled job operations.
type JobHandlers struct {
	Svc      *service.ScheduledJobService
	MaxLimit int
	Logger   *slog.Logger
}

// newRequestBody starts a decode target with the form checkbox defaults, so a client that
// omits skip_clone gets the same request a fresh form would submit.
func newRequestBody() model.RawJobRequest {
	def := model.DefaultRawJobRequest(model.FormDefaults{})
	return model.RawJobRequest{SkipClone: def.SkipClone, SkipBuild: def.SkipBuild}
}

// ListJobs handles GET /api/jobs.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	maxLimit := h.MaxLimit
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	opts, err := parseJobListOptions(r, defaultListLimit, maxLimit)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}

	jobs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

// CreateJob handles POST /api/jobs.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	raw := newRequestBody()
	if !DecodeJSON(w, r, &raw) {
		return
	}

	job, err := h.Svc.Create(r.Context(), raw)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// UpdateJob handles PUT /api/jobs/{id}. The body replaces the whole request.
func (h *JobHandlers) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}
	raw := newRequestBody()
	if !DecodeJSON(w, r, &raw) {
		return
	}

	job, err := h.Svc.Update(r.Context(), id, raw)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/jobs/{id}.
func (h *JobHandlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteJob handles POST /api/jobs/{id}/complete.
func (h *JobHandlers) CompleteJob(w http.ResponseWriter, r *http.Request) {
	h.reportOutcome(w, r, h.Svc.Complete)
}

// FailJob handles POST /api/jobs/{id}/fail.
func (h *JobHandlers) FailJob(w http.ResponseWriter, r *http.Request) {
	h.reportOutcome(w, r, h.Svc.Fail)
}

type outcomeFunc func(ctx context.Context, id string, report model.ExecutionReport) (*model.Job, error)

func (h *JobHandlers) reportOutcome(w http.ResponseWriter, r *http.Request, record outcomeFunc) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}
	var report model.ExecutionReport
	if !decodeOptionalJSON(w, r, &report) {
		return
	}

	job, err := record(r.Context(), id, report)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// ListExecutions handles GET /api/jobs/{id}/executions.
func (h *JobHandlers) ListExecutions(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	execs, err := h.Svc.Executions(r.Context(), id)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, execs)
}
