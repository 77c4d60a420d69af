// Package mocks provides gomock implementations of the repository and client ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockScheduledJobRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), id).Return(job, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=scheduled_job_repository_mock.go github.com/deploysched/deploysched/internal/core ScheduledJobRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_execution_repository_mock.go github.com/deploysched/deploysched/internal/core JobExecutionRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/deploysched/deploysched/internal/core CacheRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=scheduling_service_client_mock.go github.com/deploysched/deploysched/internal/client SchedulingServiceClient
