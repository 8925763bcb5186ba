package repo

import (
	"context"
	"time"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
	"github.com/harshilgor/prompt-to-3d/internal/infra"
	"github.com/harshilgor/prompt-to-3d/internal/pipeline"
	"github.com/harshilgor/prompt-to-3d/internal/sqlinline"
)

// JobRepositoryPG records terminal job outcomes in PostgreSQL. It implements
// pipeline.Recorder.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// JobRow is a persisted job-history entry.
type JobRow struct {
	ID        string
	Status    string
	Strategy  string
	Model     string
	Prompt    string
	Error     string
	FileSize  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJobRepository creates a job-history repository over the given executor.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// Record upserts the terminal state of a job.
func (r *JobRepositoryPG) Record(ctx context.Context, rec pipeline.JobRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertJob,
		rec.JobID,
		string(rec.Status),
		string(rec.Strategy),
		rec.Model,
		rec.Prompt,
		rec.Error,
		rec.FileSize,
	)
	return err
}

// GetByID fetches a recorded job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*JobRow, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJob, jobID)
	var job JobRow
	if err := row.Scan(
		&job.ID,
		&job.Status,
		&job.Strategy,
		&job.Model,
		&job.Prompt,
		&job.Error,
		&job.FileSize,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

var _ pipeline.Recorder = (*JobRepositoryPG)(nil)
