package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/testutil"
)

var repoTestNow = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestJobRequest(app string) model.JobRequest {
	return testutil.NewJobRequest(repoTestNow).WithAppName(app).Build(repoTestNow, time.UTC)
}

func TestBuildJobListQuery(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		q, args := buildJobListQuery(model.JobListOptions{})
		assert.NotContains(t, q, "WHERE")
		assert.Contains(t, q, "ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")
		assert.Equal(t, []any{defaultJobListLimit, 0}, args)
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()
		status := model.JobStatusFailed
		q, args := buildJobListQuery(model.JobListOptions{
			Limit:   10,
			Offset:  -5,
			Status:  &status,
			AppName: testutil.StringPtr(" svc-a "),
		})
		assert.Contains(t, q, "WHERE status = $1 AND app_name = $2")
		assert.Contains(t, q, "LIMIT $3 OFFSET $4")
		assert.Equal(t, []any{"failed", "svc-a", 10, 0}, args)
	})

	t.Run("blank app name ignored", func(t *testing.T) {
		t.Parallel()
		q, args := buildJobListQuery(model.JobListOptions{AppName: testutil.StringPtr("  ")})
		assert.NotContains(t, q, "app_name =")
		assert.Len(t, args, 2)
	})
}

func TestScheduledJobRepo_CRUD(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(repoTestNow)
		repo := NewScheduledJobRepoWithTimeProvider(db, tp)

		req := newTestJobRequest("svc-a")
		created, err := repo.Create(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, model.JobStatusPending, created.Status)
		assert.Equal(t, req.AppName, created.AppName)
		assert.Equal(t, req.JenkinsToken, created.JenkinsToken)
		assert.True(t, req.ScheduledAt.Equal(created.ScheduledAt))
		assert.True(t, repoTestNow.Equal(created.CreatedAt))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		gotReq := got.Request()
		assert.True(t, req.ScheduledAt.Equal(gotReq.ScheduledAt))
		gotReq.ScheduledAt = req.ScheduledAt
		assert.Equal(t, req, gotReq)

		tp.AddTime(time.Minute)
		second, err := repo.Create(ctx, newTestJobRequest("svc-b"))
		require.NoError(t, err)

		list, err := repo.List(ctx, model.JobListOptions{Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID, "newest first")
		assert.Equal(t, created.ID, list[1].ID)

		filtered, err := repo.List(ctx, model.JobListOptions{AppName: testutil.StringPtr("svc-b")})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, second.ID, filtered[0].ID)

		edit := newTestJobRequest("svc-a-renamed")
		updated, err := repo.Update(ctx, created.ID, edit)
		require.NoError(t, err)
		assert.Equal(t, "svc-a-renamed", updated.AppName)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.GetByID(ctx, created.ID)
		require.ErrorIs(t, err, model.ErrJobNotFound)
	})
}

func TestScheduledJobRepo_UpdateGuards(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewScheduledJobRepoWithTimeProvider(db, NewFixedTimeProvider(repoTestNow))

		_, err := repo.Update(ctx, "00000000-0000-0000-0000-000000000000", newTestJobRequest("x"))
		require.ErrorIs(t, err, model.ErrJobNotFound)

		job, err := repo.Create(ctx, newTestJobRequest("svc-a"))
		require.NoError(t, err)
		_, _, err = repo.RecordOutcome(ctx, model.RecordOutcomeParams{JobID: job.ID, Outcome: model.ExecutionFailed})
		require.NoError(t, err)

		_, err = repo.Update(ctx, job.ID, newTestJobRequest("svc-a"))
		require.ErrorIs(t, err, model.ErrJobNotEditable)
	})
}

func TestScheduledJobRepo_RecordOutcome(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewScheduledJobRepoWithTimeProvider(db, NewFixedTimeProvider(repoTestNow))
		execs := NewJobExecutionRepo(db)

		job, err := repo.Create(ctx, newTestJobRequest("svc-a"))
		require.NoError(t, err)

		updated, exec, err := repo.RecordOutcome(ctx, model.RecordOutcomeParams{
			JobID:        job.ID,
			Outcome:      model.ExecutionSuccess,
			ResponseText: "Build #42 triggered",
		})
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCompleted, updated.Status)
		assert.Equal(t, job.ID, exec.JobID)
		assert.Equal(t, model.ExecutionSuccess, exec.Outcome)

		_, _, err = repo.RecordOutcome(ctx, model.RecordOutcomeParams{JobID: job.ID, Outcome: model.ExecutionFailed})
		require.ErrorIs(t, err, model.ErrJobAlreadyFinished)

		_, _, err = repo.RecordOutcome(ctx, model.RecordOutcomeParams{
			JobID:   "00000000-0000-0000-0000-000000000000",
			Outcome: model.ExecutionFailed,
		})
		require.ErrorIs(t, err, model.ErrJobNotFound)

		history, err := execs.ListByJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Build #42 triggered", history[0].ResponseText)

		deleted, err := repo.Delete(ctx, job.ID)
		require.NoError(t, err)
		require.True(t, deleted)
		history, err = execs.ListByJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Empty(t, history, "executions cascade with the job")
	})
}

func TestJobExecutionRepo_DeleteOlderThan(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(repoTestNow)
		repo := NewScheduledJobRepoWithTimeProvider(db, tp)
		execs := NewJobExecutionRepo(db)

		for _, app := range []string{"a", "b", "c"} {
			job, err := repo.Create(ctx, newTestJobRequest(app))
			require.NoError(t, err)
			_, _, err = repo.RecordOutcome(ctx, model.RecordOutcomeParams{JobID: job.ID, Outcome: model.ExecutionSuccess})
			require.NoError(t, err)
			tp.AddTime(time.Hour)
		}

		_, err := execs.DeleteOlderThan(ctx, model.PruneExecutionsParams{Before: repoTestNow})
		require.Error(t, err, "batch size must be positive")

		n, err := execs.DeleteOlderThan(ctx, model.PruneExecutionsParams{
			Before:    repoTestNow.Add(90 * time.Minute),
			BatchSize: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = execs.DeleteOlderThan(ctx, model.PruneExecutionsParams{
			Before:    repoTestNow.Add(90 * time.Minute),
			BatchSize: 10,
		})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
