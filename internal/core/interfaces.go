// Package core declares the ports the service layer depends on.
package core

import (
	"context"
	"time"

	"github.com/deploysched/deploysched/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Services depend on these interfaces; internal/data provides the implementations.

// ScheduledJobRepository persists scheduled deployment jobs.
type ScheduledJobRepository interface {
	Create(ctx context.Context, req model.JobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts model.JobListOptions) ([]model.Job, error)
	// Update returns model.ErrJobNotFound or model.ErrJobNotEditable when the job cannot be replaced.
	Update(ctx context.Context, id string, req model.JobRequest) (*model.Job, error)
	Delete(ctx context.Context, id string) (bool, error)
	// RecordOutcome returns model.ErrJobNotFound or model.ErrJobAlreadyFinished when no pending job matches.
	RecordOutcome(ctx context.Context, p model.RecordOutcomeParams) (*model.Job, *model.JobExecution, error)
}

// JobExecutionRepository reads and prunes execution history.
type JobExecutionRepository interface {
	ListByJob(ctx context.Context, jobID string) ([]model.JobExecution, error)
	DeleteOlderThan(ctx context.Context, p model.PruneExecutionsParams) (int64, error)
}

// CacheRepository defines the caching operations the services rely on.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns nil, nil when the key is missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) (bool, error)
	// Incr atomically increments a counter and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	Health(ctx context.Context) error
}
