package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deploysched/deploysched/internal/data/pgxutil"
	"github.com/deploysched/deploysched/internal/domain/model"
)

const jobExecutionColumns = `id::text AS id, job_id::text AS job_id, executed_at, outcome, response_text`

// JobExecutionRepo reads and prunes the execution history reported by the engine.
type JobExecutionRepo struct {
	DB *sql.DB
}

// NewJobExecutionRepo creates a JobExecutionRepo.
func NewJobExecutionRepo(db *sql.DB) *JobExecutionRepo {
	return &JobExecutionRepo{DB: db}
}

// ListByJob returns the executions of one job, most recent first.
func (r *JobExecutionRepo) ListByJob(ctx context.Context, jobID string) ([]model.JobExecution, error) {
	var out []model.JobExecution
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+jobExecutionColumns+`
			FROM job_executions
			WHERE job_id = $1
			ORDER BY executed_at DESC, id DESC`, jobID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.JobExecution])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list job executions: %w", err)
	}
	if out == nil {
		out = []model.JobExecution{}
	}
	return out, nil
}

// DeleteOlderThan removes up to BatchSize executions recorded before the cutoff and returns how many went.
func (r *JobExecutionRepo) DeleteOlderThan(ctx context.Context, p model.PruneExecutionsParams) (int64, error) {
	if p.BatchSize <= 0 {
		return 0, fmt.Errorf("batch size must be positive, got %d", p.BatchSize)
	}

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `
			DELETE FROM job_executions
			WHERE id IN (
				SELECT id FROM job_executions
				WHERE executed_at < $1
				ORDER BY executed_at
				LIMIT $2
			)`, p.Before.UTC(), p.BatchSize)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete old job executions: %w", err)
	}
	return affected, nil
}
