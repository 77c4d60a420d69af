package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/observability/metrics"
	"github.com/deploysched/deploysched/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs *service.ScheduledJobService
	// FormDefaults and Timezone feed GET /api/form-defaults.
	FormDefaults model.FormDefaults
	Timezone     string
	// APIToken protects /api/* when non-empty.
	APIToken     string
	MaxListLimit int
	// Metrics and Gatherer are optional; MetricsPath is only served when Gatherer is set.
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Logger      *slog.Logger
	// Now overrides the clock of /api/health.
	Now func() time.Time
}

type router struct {
	mux     *http.ServeMux
	metrics *metrics.Metrics
	auth    func(http.Handler) http.Handler
}

// handle registers h under pattern with route metrics.
func (rt *router) handle(pattern string, h http.HandlerFunc) {
	rt.mux.Handle(pattern, instrument(rt.metrics, pattern, h))
}

// handleAPI is handle behind bearer authentication.
func (rt *router) handleAPI(pattern string, h http.HandlerFunc) {
	rt.mux.Handle(pattern, instrument(rt.metrics, pattern, rt.auth(h)))
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	rt := &router{
		mux:     http.NewServeMux(),
		metrics: services.Metrics,
		auth:    BearerAuth(services.APIToken),
	}

	now := services.Now
	if now == nil {
		now = time.Now
	}

	if services.Jobs != nil {
		registerJobRoutes(rt, &JobHandlers{
			Svc:      services.Jobs,
			MaxLimit: services.MaxListLimit,
			Logger:   services.Logger,
		})
	}
	registerMetaRoutes(rt, &MetaHandlers{Defaults: services.FormDefaults, Timezone: services.Timezone})

	rt.handle("GET /healthz", healthHandler)
	rt.handle("HEAD /healthz", healthHandler)
	rt.handle("GET /api/health", apiHealthHandler(now))

	if services.Gatherer != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		rt.mux.Handle("GET "+path, metrics.Handler(services.Gatherer))
	}

	return rt.mux
}

func registerJobRoutes(rt *router, h *JobHandlers) {
	rt.handleAPI("GET /api/jobs", h.ListJobs)
	rt.handleAPI("POST /api/jobs", h.CreateJob)
	rt.handleAPI("GET /api/jobs/{id}", h.GetJob)
	rt.handleAPI("PUT /api/jobs/{id}", h.UpdateJob)
	rt.handleAPI("DELETE /api/jobs/{id}", h.DeleteJob)
	rt.handleAPI("POST /api/jobs/{id}/complete", h.CompleteJob)
	rt.handleAPI("POST /api/jobs/{id}/fail", h.FailJob)
	rt.handleAPI("GET /api/jobs/{id}/executions", h.ListExecutions)
}

func registerMetaRoutes(rt *router, h *MetaHandlers) {
	rt.handleAPI("GET /api/version-modes", h.VersionModes)
	rt.handleAPI("GET /api/form-defaults", h.FormDefaults)
}
