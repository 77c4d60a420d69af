package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deploysched/deploysched/config"
	"github.com/deploysched/deploysched/internal/core"
	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/observability/metrics"
)

// HistoryReaperServiceOptions groups dependencies for HistoryReaperService.
type HistoryReaperServiceOptions struct {
	Repo    core.JobExecutionRepository // Required
	Config  config.HistoryReaperConfig  // Required
	Logger  *slog.Logger                // Optional
	Metrics *metrics.Metrics            // Optional
}

// HistoryReaperService deletes execution records past their retention.
// Scheduled jobs are never touched; they are only removed by an explicit delete.
type HistoryReaperService struct {
	repo    core.JobExecutionRepository
	config  config.HistoryReaperConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewHistoryReaperService constructs a new HistoryReaperService.
func NewHistoryReaperService(opts HistoryReaperServiceOptions) (*HistoryReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobExecutionRepository is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("reaper interval must be positive")
	}
	if opts.Config.BatchSize <= 0 {
		return nil, errors.New("reaper batch size must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "history_reaper")
		logger.Debug("HistoryReaperService initialized",
			"interval", opts.Config.Interval,
			"max_age", opts.Config.MaxAge,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &HistoryReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
		now:     time.Now,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *HistoryReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting history reaper", "interval", s.config.Interval)
	}

	// Spread instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(err, "initial cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "history reaper stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(err, "cleanup")
			}
		}
	}
}

// RunOnce deletes expired execution records batch by batch and returns how many were removed.
func (s *HistoryReaperService) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.config.MaxAge)

	var total int64
	for {
		count, err := s.repo.DeleteOlderThan(ctx, model.PruneExecutionsParams{
			Before:    cutoff,
			BatchSize: s.config.BatchSize,
		})
		total += count
		if err != nil {
			s.emitCleanupMetrics(total, err)
			return total, fmt.Errorf("delete old job executions: %w", err)
		}
		if count < int64(s.config.BatchSize) {
			break
		}
		if ctx.Err() != nil {
			s.emitCleanupMetrics(total, ctx.Err())
			return total, ctx.Err()
		}
	}

	s.emitCleanupMetrics(total, nil)
	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted old job executions",
			"count", total,
			"max_age", s.config.MaxAge,
		)
	}
	return total, nil
}

// waitWithJitter sleeps a random delay up to 10% of the interval.
func (s *HistoryReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *HistoryReaperService) emitCleanupMetrics(deleted int64, err error) {
	switch {
	case isContextCancellation(err):
		return
	case err != nil:
		s.metrics.ReaperRun(metrics.ResultError, deleted)
	case deleted == 0:
		s.metrics.ReaperRun(metrics.ResultNoop, 0)
	default:
		s.metrics.ReaperRun(metrics.ResultSuccess, deleted)
	}
}

func (s *HistoryReaperService) logCleanupError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
