package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/deploysched/deploysched/config"
	"github.com/deploysched/deploysched/internal/core"
	"github.com/deploysched/deploysched/internal/data"
	"github.com/deploysched/deploysched/internal/observability/metrics"
	"github.com/deploysched/deploysched/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.ScheduledJobService
	HistoryReaper *service.HistoryReaperService // nil unless the history-reaper mode is enabled
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	// RedisClient is optional; without it job lists are read from the database every time.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Registry receives the metrics. A fresh registry with process collectors is used when nil.
	Registry *prometheus.Registry
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Jobs       *data.ScheduledJobRepo
	Executions *data.JobExecutionRepo
	Cache      *data.RedisCacheRepo
}

func buildRepositories(db *sql.DB, rdb redis.UniversalClient) serviceRepositories {
	repos := serviceRepositories{
		Jobs:       data.NewScheduledJobRepo(db),
		Executions: data.NewJobExecutionRepo(db),
	}
	if rdb != nil {
		repos.Cache = data.NewRedisCacheRepo(rdb)
	}
	return repos
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newListCache(repos serviceRepositories, cfg config.CacheConfig, logger *slog.Logger) *core.JobListCache {
	if !cfg.Enabled {
		return nil
	}
	if repos.Cache == nil {
		logger.Warn("job list cache enabled but no redis client configured; caching disabled")
		return nil
	}
	return core.NewJobListCache(repos.Cache, core.JobListCacheConfig{TTL: cfg.JobListTTL})
}

// NewServices wires repositories into services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := deps.Registry
	if reg == nil {
		reg = newRegistry()
	}
	m := metrics.New(reg)

	loc, err := deps.Config.Schedule.Location()
	if err != nil {
		return ServiceContainer{}, err
	}

	repos := buildRepositories(deps.DB, deps.RedisClient)

	jobs, err := service.NewScheduledJobService(service.ScheduledJobServiceOptions{
		Stores: service.ScheduledJobStores{
			Jobs:       repos.Jobs,
			Executions: repos.Executions,
			ListCache:  newListCache(repos, deps.Config.Cache, logger),
		},
		Config:  service.ScheduledJobServiceConfig{Location: loc},
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build scheduled job service: %w", err)
	}

	container := ServiceContainer{Jobs: jobs, Metrics: m, Gatherer: reg}

	if deps.Config.IsHistoryReaperEnabled() {
		reaper, err := service.NewHistoryReaperService(service.HistoryReaperServiceOptions{
			Repo:    repos.Executions,
			Config:  deps.Config.HistoryReaper,
			Logger:  logger,
			Metrics: m,
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("build history reaper: %w", err)
		}
		container.HistoryReaper = reaper
	}

	return container, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown starts.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// backgroundService is one long-running component started by RunServicesWithShutdown.
type backgroundService struct {
	name string
	run  func(ctx context.Context) error
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) ([]backgroundService, error) {
	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return nil, fmt.Errorf("determine enabled services: %w", err)
	}

	var out []backgroundService
	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{Config: cfg.Config, Services: cfg.Services, Logger: logger})
		out = append(out, backgroundService{
			name: "http",
			run:  func(ctx context.Context) error { return ServeHTTP(ctx, server, logger) },
		})
	}
	if enabled[config.ServiceModeHistoryReaper] {
		reaper := cfg.Services.HistoryReaper
		if reaper == nil {
			return nil, errors.New("history reaper enabled but not built")
		}
		out = append(out, backgroundService{name: "history-reaper", run: reaper.Run})
	}
	return out, nil
}

// RunServicesWithShutdown runs every enabled service until SIGINT/SIGTERM or the first failure.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	services, err := buildBackgroundServices(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServices(ctx, services, logger)
}

func runServices(ctx context.Context, services []backgroundService, logger *slog.Logger) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		group.Go(func() error {
			err := svc.run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("service error", "service", svc.name, "error", err)
				return fmt.Errorf("%s: %w", svc.name, err)
			}
			logger.Info(svc.name + " stopped")
			return nil
		})
	}
	return group.Wait()
}
