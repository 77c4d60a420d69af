// Package client talks to the scheduling API on behalf of operators.
package client

import (
	"context"

	"github.com/deploysched/deploysched/internal/domain/model"
)

// SchedulingServiceClient is the remote contract for scheduled jobs.
// Failures are reported as *ServiceError; nothing is retried.
type SchedulingServiceClient interface {
	List(ctx context.Context) ([]model.Job, error)
	Create(ctx context.Context, req model.JobRequest) (*model.Job, error)
	Update(ctx context.Context, id string, req model.JobRequest) (*model.Job, error)
	Delete(ctx context.Context, id string) error
}
