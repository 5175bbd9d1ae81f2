package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionsSweepJob removes expired rows from the sessions audit table.
// Live session state expires in Redis on its own; the Postgres records
// only exist for auditing and accumulate until swept.
type SessionsSweepJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSessionsSweepJob constructs the job.
func NewSessionsSweepJob(pool *pgxpool.Pool, logger *slog.Logger) *SessionsSweepJob {
	return &SessionsSweepJob{pool: pool, logger: logger}
}

// Handle processes TaskSessionsSweep tasks.
func (j *SessionsSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionsSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	cutoff := time.Now().Add(-payload.Retention)
	tag, err := j.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("jobs: sweep sessions: %w", err)
	}
	if j.logger != nil && tag.RowsAffected() > 0 {
		j.logger.Info("swept expired session records", slog.Int64("removed", tag.RowsAffected()))
	}
	return nil
}
