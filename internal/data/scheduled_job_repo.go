package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/deploysched/deploysched/internal/data/pgxutil"
	"github.com/deploysched/deploysched/internal/domain/model"
)

const (
	defaultJobListLimit = 50

	scheduledJobColumns = `
		id::text AS id, app_name, version_mode, version, target_server, app_branch,
		skip_clone, skip_build, schedule_date, schedule_time, scheduled_at,
		jenkins_url, jenkins_user, jenkins_token, status, created_at, updated_at`

	scheduledJobGetByIDQuery = `SELECT ` + scheduledJobColumns + ` FROM scheduled_jobs WHERE id = $1`
)

// ScheduledJobRepo provides database operations for scheduled deployment jobs.
type ScheduledJobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewScheduledJobRepo creates a ScheduledJobRepo with the real time provider.
func NewScheduledJobRepo(db *sql.DB) *ScheduledJobRepo {
	return &ScheduledJobRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewScheduledJobRepoWithTimeProvider creates a ScheduledJobRepo with a custom time provider (useful for tests).
func NewScheduledJobRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ScheduledJobRepo {
	return &ScheduledJobRepo{DB: db, timeProvider: tp}
}

// Create inserts a validated request as a new pending job.
func (r *ScheduledJobRepo) Create(ctx context.Context, req model.JobRequest) (*model.Job, error) {
	now := r.timeProvider.Now().UTC()

	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO scheduled_jobs (
				app_name, version_mode, version, target_server, app_branch, skip_clone, skip_build,
				schedule_date, schedule_time, scheduled_at, jenkins_url, jenkins_user, jenkins_token,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
			RETURNING `+scheduledJobColumns,
			req.AppName,
			string(req.VersionMode),
			req.Version,
			req.TargetServer,
			req.AppBranch,
			req.SkipClone,
			req.SkipBuild,
			req.ScheduleDate,
			req.ScheduleTime,
			req.ScheduledAt.UTC(),
			req.JenkinsURL,
			req.JenkinsUser,
			req.JenkinsToken,
			string(model.JobStatusPending),
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert scheduled job: %w", err)
	}
	return &out, nil
}

// GetByID returns the job with the given id or model.ErrJobNotFound.
func (r *ScheduledJobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, scheduledJobGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrJobNotFound
		}
		return nil, fmt.Errorf("get scheduled job: %w", err)
	}
	return &out, nil
}

// List returns jobs newest first, optionally filtered by status and application name.
func (r *ScheduledJobRepo) List(ctx context.Context, opts model.JobListOptions) ([]model.Job, error) {
	query, args := buildJobListQuery(opts)

	var out []model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list scheduled jobs: %w", err)
	}
	if out == nil {
		out = []model.Job{}
	}
	return out, nil
}

// buildJobListQuery assembles the filtered list query and its positional args.
func buildJobListQuery(opts model.JobListOptions) (string, []any) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	offset := max(opts.Offset, 0)

	var where []string
	args := make([]any, 0, 4)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if opts.Status != nil {
		where = append(where, "status = "+next(string(*opts.Status)))
	}
	if opts.AppName != nil && strings.TrimSpace(*opts.AppName) != "" {
		where = append(where, "app_name = "+next(strings.TrimSpace(*opts.AppName)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(scheduledJobColumns)
	b.WriteString(" FROM scheduled_jobs")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")
	b.WriteString(" LIMIT " + next(limit))
	b.WriteString(" OFFSET " + next(offset))
	return b.String(), args
}

// Update replaces the whole request of a pending job.
// It returns model.ErrJobNotFound for unknown ids and model.ErrJobNotEditable for completed or failed jobs.
func (r *ScheduledJobRepo) Update(ctx context.Context, id string, req model.JobRequest) (*model.Job, error) {
	now := r.timeProvider.Now().UTC()

	var out model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE scheduled_jobs SET
				app_name = $2, version_mode = $3, version = $4, target_server = $5, app_branch = $6,
				skip_clone = $7, skip_build = $8, schedule_date = $9, schedule_time = $10,
				scheduled_at = $11, jenkins_url = $12, jenkins_user = $13, jenkins_token = $14,
				updated_at = $15
			WHERE id = $1 AND status = 'pending'
			RETURNING `+scheduledJobColumns,
			id,
			req.AppName,
			string(req.VersionMode),
			req.Version,
			req.TargetServer,
			req.AppBranch,
			req.SkipClone,
			req.SkipBuild,
			req.ScheduleDate,
			req.ScheduleTime,
			req.ScheduledAt.UTC(),
			req.JenkinsURL,
			req.JenkinsUser,
			req.JenkinsToken,
			now,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		if errors.Is(err, pgx.ErrNoRows) {
			return explainMissingPending(ctx, tx, id, model.ErrJobNotEditable)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrJobNotFound) || errors.Is(err, model.ErrJobNotEditable) {
			return nil, err
		}
		return nil, fmt.Errorf("update scheduled job: %w", err)
	}
	return &out, nil
}

// explainMissingPending tells apart a missing job from one that left the pending state.
func explainMissingPending(ctx context.Context, tx pgx.Tx, id string, notPending error) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM scheduled_jobs WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrJobNotFound
	}
	if err != nil {
		return err
	}
	return notPending
}

// Delete permanently removes a job and its execution history.
// Return semantics:
//   - (true, nil): job found and deleted
//   - (false, nil): job not found
//   - (false, err): delete failed
func (r *ScheduledJobRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM scheduled_jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete scheduled job: %w", err)
	}
	return affected > 0, nil
}

// RecordOutcome moves a pending job to completed or failed and appends the execution record,
// both in one transaction. A job that already has an outcome yields model.ErrJobAlreadyFinished.
func (r *ScheduledJobRepo) RecordOutcome(
	ctx context.Context,
	p model.RecordOutcomeParams,
) (*model.Job, *model.JobExecution, error) {
	now := r.timeProvider.Now().UTC()

	var (
		job  model.Job
		exec model.JobExecution
	)
	err := pgxutil.WithPgxTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE scheduled_jobs SET status = $2, updated_at = $3
			WHERE id = $1 AND status = 'pending'
			RETURNING `+scheduledJobColumns,
			p.JobID, string(p.Outcome.JobStatus()), now)
		if err != nil {
			return err
		}
		job, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		if errors.Is(err, pgx.ErrNoRows) {
			return explainMissingPending(ctx, tx, p.JobID, model.ErrJobAlreadyFinished)
		}
		if err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `
			INSERT INTO job_executions (job_id, executed_at, outcome, response_text)
			VALUES ($1, $2, $3, $4)
			RETURNING `+jobExecutionColumns,
			p.JobID, now, string(p.Outcome), p.ResponseText)
		if err != nil {
			return err
		}
		exec, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobExecution])
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrJobNotFound) || errors.Is(err, model.ErrJobAlreadyFinished) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("record job outcome: %w", err)
	}
	return &job, &exec, nil
}
