// Package metrics exposes the Prometheus instruments of the scheduler.
//
// All recording methods are safe on a nil *Metrics, so components can be built without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obserrors "github.com/deploysched/deploysched/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Job transitions recorded by JobTransition.
const (
	TransitionCreate   = "create"
	TransitionUpdate   = "update"
	TransitionDelete   = "delete"
	TransitionComplete = "complete"
	TransitionFail     = "fail"
)

const (
	requestDurationMetric = "deploysched_http_request_duration_seconds"
	jobTransitionsMetric  = "deploysched_job_transitions_total"
	cacheLookupsMetric    = "deploysched_job_list_cache_lookups_total"
	reaperRunsMetric      = "deploysched_history_reaper_runs_total"
	reaperDeletedMetric   = "deploysched_history_reaper_deleted_total"

	methodLabel     = "method"
	routeLabel      = "route"
	codeLabel       = "code"
	transitionLabel = "transition"
	resultLabel     = "result"
	errorClassLabel = "error_class"
)

// DefaultBuckets returns the request duration buckets in seconds.
func DefaultBuckets() []float64 {
	return []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.3, 1, 3, 10}
}

// Metrics holds the registered instruments.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	jobTransitions  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	reaperRuns      *prometheus.CounterVec
	reaperDeleted   prometheus.Counter
}

// New registers the instruments with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    requestDurationMetric,
			Help:    "HTTP request duration in seconds by route pattern",
			Buckets: DefaultBuckets(),
		}, []string{methodLabel, routeLabel, codeLabel}),
		jobTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: jobTransitionsMetric,
			Help: "Scheduled job lifecycle transitions",
		}, []string{transitionLabel, resultLabel, errorClassLabel}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: cacheLookupsMetric,
			Help: "Job list cache lookups by result",
		}, []string{resultLabel}),
		reaperRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: reaperRunsMetric,
			Help: "History reaper cleanup passes by result",
		}, []string{resultLabel}),
		reaperDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: reaperDeletedMetric,
			Help: "Execution records deleted by the history reaper",
		}),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// JobTransition counts one job lifecycle attempt. err is only inspected when result is ResultError.
func (m *Metrics) JobTransition(transition, result string, err error) {
	if m == nil {
		return
	}
	class := ""
	if result == ResultError {
		class = obserrors.Classify(err)
	}
	m.jobTransitions.With(prometheus.Labels{
		transitionLabel: transition,
		resultLabel:     result,
		errorClassLabel: class,
	}).Inc()
}

// CacheLookup counts a job list cache hit, miss or error.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ReaperRun counts one reaper pass and the rows it removed.
func (m *Metrics) ReaperRun(result string, deleted int64) {
	if m == nil {
		return
	}
	m.reaperRuns.WithLabelValues(result).Inc()
	if deleted > 0 {
		m.reaperDeleted.Add(float64(deleted))
	}
}

// Handler serves the exposition format for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
